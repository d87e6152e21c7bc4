package healthguard

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "healthguard",
	Short:         "healthguard keeps your health profile, food log and consultations on this machine",
	Long:          "healthguard is a local-first health tracker: biometric profile, food-analysis history, consultation transcripts, wellness surveys and daily metrics.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides store.path)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
}
