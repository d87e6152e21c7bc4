package healthguard

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the food-analysis history",
}

var (
	addName           string
	addDescription    string
	addCalories       float64
	addProtein        float64
	addCarbs          float64
	addFat            float64
	addFiber          float64
	addHealthScore    float64
	addRecommendation string

	listQuery string
	listFrom  string
	listTo    string
	listJSON  bool

	clearYes bool
)

var historyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a food analysis manually",
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := model.FoodAnalysis{
			Name:        addName,
			Description: addDescription,
			Nutrients: model.Nutrients{
				Calories: addCalories,
				Protein:  addProtein,
				Carbs:    addCarbs,
				Fat:      addFat,
				Fiber:    optionalFloat(addFiber),
			},
			HealthScore:    addHealthScore,
			Recommendation: addRecommendation,
		}
		if err := service.NewValidator().Validate(rec); err != nil {
			return err
		}
		return withServices(func(svc *services) error {
			saved, err := svc.history.Append(rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s (%.0f kcal) at %d\n", saved.Name, saved.Nutrients.Calories, saved.Timestamp)
			return nil
		})
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List food analyses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			records, err := svc.history.Filter(service.HistoryFilter{Query: listQuery, FromDate: listFrom, ToDate: listTo})
			if err != nil {
				return err
			}
			if listJSON {
				return printJSON(cmd.OutOrStdout(), records)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "TIMESTAMP\tWHEN\tNAME\tKCAL\tP\tC\tF\tSCORE")
			for _, r := range records {
				fmt.Fprintf(out, "%d\t%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\t%.0f\n", r.Timestamp, formatMillis(r.Timestamp), r.Name, r.Nutrients.Calories, r.Nutrients.Protein, r.Nutrients.Carbs, r.Nutrients.Fat, r.HealthScore)
			}
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <timestamp>",
	Short: "Delete food analyses with the given timestamp",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := parseInt64Arg("timestamp", args[0])
		if err != nil {
			return err
		}
		return withServices(func(svc *services) error {
			if err := svc.history.DeleteByTimestamp(ts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted records at %d\n", ts)
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every food analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to clear history without --yes")
		}
		return withServices(func(svc *services) error {
			if err := svc.history.ClearAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared food history")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyAddCmd, historyListCmd, historyDeleteCmd, historyClearCmd)

	historyAddCmd.Flags().StringVar(&addName, "name", "", "Food name")
	historyAddCmd.Flags().StringVar(&addDescription, "description", "", "Description")
	historyAddCmd.Flags().Float64Var(&addCalories, "calories", 0, "Calories (kcal)")
	historyAddCmd.Flags().Float64Var(&addProtein, "protein", 0, "Protein (g)")
	historyAddCmd.Flags().Float64Var(&addCarbs, "carbs", 0, "Carbohydrates (g)")
	historyAddCmd.Flags().Float64Var(&addFat, "fat", 0, "Fat (g)")
	historyAddCmd.Flags().Float64Var(&addFiber, "fiber", 0, "Fiber (g)")
	historyAddCmd.Flags().Float64Var(&addHealthScore, "score", 0, "Health score 0-100")
	historyAddCmd.Flags().StringVar(&addRecommendation, "recommendation", "", "Recommendation text")
	_ = historyAddCmd.MarkFlagRequired("name")

	historyListCmd.Flags().StringVar(&listQuery, "query", "", "Filter by text in name or description")
	historyListCmd.Flags().StringVar(&listFrom, "from", "", "From date YYYY-MM-DD (inclusive)")
	historyListCmd.Flags().StringVar(&listTo, "to", "", "To date YYYY-MM-DD (inclusive)")
	historyListCmd.Flags().BoolVar(&listJSON, "json", false, "Print records as JSON")

	historyClearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm clearing all records")
}
