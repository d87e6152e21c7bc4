package healthguard

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		file := cfg.File
		if file == "" {
			file = "(none)"
		}
		fmt.Fprintf(out, "config file: %s\n", file)
		values := cfg.Values()
		if cfg.Store.Backend == config.BackendSQLite && cfg.Store.Path == "" {
			if path, err := resolveDBPath(cfg); err == nil {
				values["store.path"] = path + " (default)"
			}
		}
		for _, k := range config.Keys() {
			fmt.Fprintf(out, "%s=%s\n", k, values[k])
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the default config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
}
