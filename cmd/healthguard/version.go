package healthguard

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/db"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
)

// Set with -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version/build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "healthguard %s (commit %s, built %s)\n", version, commit, date)
		fmt.Fprintf(out, "Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Database schema: v%d\n", db.CurrentVersion())
		fmt.Fprintf(out, "Profile schema: v%d\n", model.ProfileSchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
