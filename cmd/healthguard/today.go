package healthguard

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

var (
	todayDate   string
	todayWindow string
	todayJSON   bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's calories, hydration, sleep and mood",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := time.Now()
		if todayDate != "" {
			parsed, err := time.ParseInLocation("2006-01-02", todayDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", todayDate)
			}
			target = parsed
		}
		return withServices(func(svc *services) error {
			window := svc.window()
			if todayWindow != "" {
				w, err := service.ParseCaloriesWindow(todayWindow)
				if err != nil {
					return err
				}
				window = w
			}
			status, err := service.TodaySummary(svc.profiles, svc.history, target, window)
			if err != nil {
				return err
			}
			if todayJSON {
				return printJSON(cmd.OutOrStdout(), status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", status.Date)
			if !status.HasProfile {
				fmt.Fprintf(out, "Consumed: %.0f kcal (%s)\n", status.ConsumedCalories, status.CaloriesWindow)
				fmt.Fprintln(out, "Profile: not set")
				return nil
			}
			fmt.Fprintf(out, "Calories: %.0f / %d kcal (%.1f%%, %s)\n", status.ConsumedCalories, status.TargetCalories, status.CalorieProgressPct, status.CaloriesWindow)
			fmt.Fprintf(out, "Hydration: %d / %d ml (%.1f%%)\n", status.HydrationToday, status.HydrationGoal, status.HydrationProgressPct)
			fmt.Fprintf(out, "Sleep: %.1f / %.1f h\n", status.SleepLastNight, status.SleepGoal)
			fmt.Fprintf(out, "Mood: %s\n", status.Mood)
			if status.StressScore != nil {
				fmt.Fprintf(out, "Stress: %d\n", *status.StressScore)
			}
			fmt.Fprintf(out, "Immunity: %s\n", status.ImmunityStatus)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
	todayCmd.Flags().StringVar(&todayWindow, "window", "", "Calories window all|day (default from config)")
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Print JSON")
}
