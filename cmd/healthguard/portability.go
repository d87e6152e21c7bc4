package healthguard

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

var (
	exportOut    string
	importIn     string
	importMode   string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every stored key as one JSON document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			data, err := service.ExportDataSnapshot(svc.store, time.Now())
			if err != nil {
				return err
			}
			if strings.TrimSpace(exportOut) == "" || exportOut == "-" {
				return printJSON(cmd.OutOrStdout(), data)
			}
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			if err := printJSON(f, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported data to %s\n", exportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON export (also accepts a browser localStorage dump)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		mode, err := service.ParseImportMode(strings.ToLower(strings.TrimSpace(importMode)))
		if err != nil {
			return err
		}
		raw, err := readInput(cmd, importIn)
		if err != nil {
			return err
		}
		data, err := service.ParseExport(raw)
		if err != nil {
			return err
		}
		return withServices(func(svc *services) error {
			report, err := service.ImportDataSnapshot(svc.store, data, service.ImportOptions{Mode: mode, DryRun: importDryRun})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Import report (%s): profile_written=%t food added=%d skipped=%d chats added=%d skipped=%d users added=%d skipped=%d\n",
				report.Mode, report.ProfileWritten, report.FoodAdded, report.FoodSkipped, report.ChatsAdded, report.ChatsSkipped, report.UsersAdded, report.UsersSkipped)
			if importDryRun {
				fmt.Fprintf(out, "Dry-run import validated %s\n", importIn)
				return nil
			}
			fmt.Fprintf(out, "Imported data from %s\n", importIn)
			return nil
		})
	},
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read import from stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return b, nil
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file path (default stdout)")
	importCmd.Flags().StringVar(&importIn, "in", "", "Input file path, or - for stdin")
	importCmd.Flags().StringVar(&importMode, "mode", "merge", "Import mode: merge|replace")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and report without writing data")
}
