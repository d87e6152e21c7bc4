package healthguard

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			report, err := service.RunDoctor(svc.store, doctorFix, svc.log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, k := range report.Keys {
				status := "ok"
				switch {
				case !k.Present:
					status = "absent"
				case k.Fixed:
					status = "reset: " + k.Error
				case k.Error != "":
					status = "corrupt: " + k.Error
				}
				fmt.Fprintf(out, "%s\trecords=%d\trev=%d\t%s\n", k.Key, k.Records, k.Revision, status)
			}
			fmt.Fprintf(out, "Corrupt keys: %d\n", report.CorruptKeys)
			fmt.Fprintf(out, "Duplicate history timestamps: %d\n", report.DuplicateTimestamps)
			fmt.Fprintf(out, "Duplicate session ids: %d\n", report.DuplicateSessionIDs)
			if doctorFix {
				fmt.Fprintf(out, "Reset keys: %d\n", report.FixedKeys)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(svc.store, false, svc.log)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Reset unreadable history and chat logs to empty")
}
