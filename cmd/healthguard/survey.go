package healthguard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Run the daily wellness survey",
}

var (
	surveyLang string
	surveyJSON bool
)

var surveyQuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List survey questions and their numbered options",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			lang, err := surveyLanguage(svc)
			if err != nil {
				return err
			}
			questions := service.SurveyQuestions(lang)
			if surveyJSON {
				return printJSON(cmd.OutOrStdout(), questions)
			}
			out := cmd.OutOrStdout()
			for _, q := range questions {
				fmt.Fprintf(out, "%s (%s): %s\n", q.ID, q.Category, q.Text)
				for i, o := range q.Options {
					fmt.Fprintf(out, "  %d) %s\n", i+1, o.Label)
				}
			}
			return nil
		})
	},
}

var surveySubmitCmd = &cobra.Command{
	Use:   "submit <question=option>...",
	Short: "Score answers, update the profile and print advice",
	Example: "  healthguard survey submit water=3 sleep=2 immune=3 stress=2 activity=1 veggies=2 junk=3 digestion=2 screen=2 energy=1",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			lang, err := surveyLanguage(svc)
			if err != nil {
				return err
			}
			answers, err := parseSurveyAnswers(lang, args)
			if err != nil {
				return err
			}
			res, err := svc.flows().CompleteSurvey(cmd.Context(), answers)
			if err != nil {
				return err
			}
			if surveyJSON {
				res.Profile = nil
				return printJSON(cmd.OutOrStdout(), res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bio-wellness index: %d\n", res.BioWellnessIndex)
			if res.Profile == nil {
				fmt.Fprintln(out, "No profile stored; answers were not saved")
			}
			fmt.Fprintf(out, "Advice: %s\n", res.Advice)
			return nil
		})
	},
}

func surveyLanguage(svc *services) (model.Language, error) {
	if surveyLang != "" {
		lang, ok := model.ParseLanguage(surveyLang)
		if !ok {
			return "", fmt.Errorf("invalid --lang %q (expected id|en)", surveyLang)
		}
		return lang, nil
	}
	p, err := svc.profiles.Load()
	if err != nil {
		return "", err
	}
	if p == nil {
		return model.LanguageID, nil
	}
	return p.Language, nil
}

func parseSurveyAnswers(lang model.Language, args []string) ([]model.SurveyAnswer, error) {
	out := make([]model.SurveyAnswer, 0, len(args))
	seen := map[string]bool{}
	for _, arg := range args {
		id, opt, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid answer %q (expected question=option)", arg)
		}
		id = strings.TrimSpace(id)
		if seen[id] {
			return nil, fmt.Errorf("question %s answered twice", id)
		}
		seen[id] = true
		n, err := strconv.Atoi(strings.TrimSpace(opt))
		if err != nil {
			return nil, fmt.Errorf("invalid option %q for %s", opt, id)
		}
		a, err := service.SurveyAnswerFor(lang, id, n)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(surveyCmd)
	surveyCmd.AddCommand(surveyQuestionsCmd, surveySubmitCmd)
	surveyCmd.PersistentFlags().StringVar(&surveyLang, "lang", "", "Question language id|en (default: profile language)")
	surveyCmd.PersistentFlags().BoolVar(&surveyJSON, "json", false, "Print JSON")
}
