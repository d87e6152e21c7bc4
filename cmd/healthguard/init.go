package healthguard

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local healthguard storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			switch svc.cfg.Store.Backend {
			case config.BackendRedis:
				fmt.Fprintf(cmd.OutOrStdout(), "Using redis store at %s (prefix %q)\n", svc.cfg.Redis.Addr, svc.cfg.Redis.Prefix)
			case config.BackendMemory:
				fmt.Fprintln(cmd.OutOrStdout(), "Using in-memory store; nothing is persisted")
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized healthguard database at %s\n", svc.dbPath)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
