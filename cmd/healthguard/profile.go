package healthguard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the active health profile",
}

var (
	createName     string
	createEmail    string
	createAge      int
	createWeight   float64
	createHeight   float64
	createGender   string
	createLanguage string
	createGoal     string
	createForce    bool

	profileJSON bool
	hydrateML   int

	contactName     string
	contactRelation string
	contactPhone    string

	logDate    string
	logTime    string
	logMinutes int
)

var profileCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the profile without an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := service.DefaultProfile()
		p.Name = strings.TrimSpace(createName)
		p.Email = strings.TrimSpace(createEmail)
		p.Age, p.Weight, p.Height = createAge, createWeight, createHeight
		if createGender != "" {
			g, ok := model.ParseGender(createGender)
			if !ok {
				return fmt.Errorf("invalid --gender %q (expected male|female)", createGender)
			}
			p.Gender = g
		}
		if createLanguage != "" {
			lang, ok := model.ParseLanguage(createLanguage)
			if !ok {
				return fmt.Errorf("invalid --language %q (expected id|en)", createLanguage)
			}
			p.Language = lang
		}
		if createGoal != "" {
			p.Goal = createGoal
		}
		return withServices(func(svc *services) error {
			existing, err := svc.profiles.Load()
			if err != nil {
				return err
			}
			if existing != nil && !createForce {
				return fmt.Errorf("a profile already exists; use --force to replace it")
			}
			if err := svc.profiles.Replace(*p, service.AuthUnchanged); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created profile for %s (target %d kcal)\n", displayName(p), service.TargetCalories(p.Weight, p.Height, p.Age, p.Gender))
			return nil
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			p, err := svc.profiles.Load()
			if err != nil {
				return err
			}
			if err := requireProfile(p); err != nil {
				return err
			}
			if profileJSON {
				p.Password = ""
				return printJSON(cmd.OutOrStdout(), p)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name: %s\n", displayName(p))
			if p.Email != "" {
				fmt.Fprintf(out, "Email: %s (verified: %t)\n", p.Email, p.IsVerified)
			}
			fmt.Fprintf(out, "Language: %s\n", p.Language)
			fmt.Fprintf(out, "Body: %.1f kg | %.1f cm | %d y | %s | %s\n", p.Weight, p.Height, p.Age, p.Gender, p.ActivityLevel)
			if p.TargetWeight != nil {
				fmt.Fprintf(out, "Target weight: %.1f kg\n", *p.TargetWeight)
			}
			fmt.Fprintf(out, "Goal: %s | Focus: %s\n", p.Goal, p.FocusArea)
			fmt.Fprintf(out, "Diet: %s (%s)\n", p.DietProtocol, p.DietPreference)
			fmt.Fprintf(out, "Formula: metabolism %d | recovery %d | focus %d | longevity %d\n", p.Formula.Metabolism, p.Formula.Recovery, p.Formula.Focus, p.Formula.Longevity)
			fmt.Fprintf(out, "Hydration: %d / %d ml\n", p.HydrationToday, p.HydrationGoal)
			fmt.Fprintf(out, "Sleep: %.1f / %.1f h\n", p.SleepLastNight, p.SleepGoal)
			fmt.Fprintf(out, "Immunity: %s\n", p.ImmunityStatus)
			if len(p.Allergies) > 0 {
				fmt.Fprintf(out, "Allergies: %s\n", strings.Join(p.Allergies, ", "))
			}
			if len(p.MedicalConditions) > 0 {
				fmt.Fprintf(out, "Conditions: %s\n", strings.Join(p.MedicalConditions, ", "))
			}
			if len(p.ConnectedDevices) > 0 {
				fmt.Fprintf(out, "Devices: %s\n", strings.Join(p.ConnectedDevices, ", "))
			}
			fmt.Fprintf(out, "Target calories: %d kcal\n", service.TargetCalories(p.Weight, p.Height, p.Age, p.Gender))
			return nil
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <field> <value> [<field> <value>...]",
	Short: "Set profile fields in one write (use \"null\" to clear optional fields)",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return fmt.Errorf("expected field/value pairs")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		updates := make([]service.FieldUpdate, 0, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			u, err := service.ParseFieldUpdate(args[i], args[i+1])
			if err != nil {
				return err
			}
			updates = append(updates, u)
		}
		return applyProfileUpdates(cmd, "Updated profile", updates...)
	},
}

var profileHydrateCmd = &cobra.Command{
	Use:   "hydrate",
	Short: "Add water to today's hydration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if hydrateML <= 0 {
			return fmt.Errorf("--ml must be > 0")
		}
		return withServices(func(svc *services) error {
			p, err := svc.profiles.UpdateField(service.AddHydration(hydrateML))
			if err != nil {
				return err
			}
			if err := requireProfile(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hydration: %d / %d ml\n", p.HydrationToday, p.HydrationGoal)
			return nil
		})
	},
}

var profileContactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Manage emergency contacts",
}

var profileContactAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an emergency contact",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := model.EmergencyContact{Name: contactName, Relation: contactRelation, Phone: contactPhone}
		return applyProfileUpdates(cmd, "Added contact "+contactName, service.AddEmergencyContact(c))
	},
}

var profileContactListCmd = &cobra.Command{
	Use:   "list",
	Short: "List emergency contacts and national emergency numbers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			p, err := svc.profiles.Load()
			if err != nil {
				return err
			}
			lang := model.LanguageID
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tNAME\tRELATION\tPHONE")
			if p != nil {
				lang = p.Language
				for _, c := range p.EmergencyContacts {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Relation, c.Phone)
				}
			}
			for _, c := range service.NationalContacts(lang) {
				fmt.Fprintf(out, "-\t%s\t%s\t%s\n", c.Name, c.Relation, c.Phone)
			}
			return nil
		})
	},
}

var profileContactRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an emergency contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyProfileUpdates(cmd, "Removed contact "+args[0], service.RemoveEmergencyContact(args[0]))
	},
}

var profileWeightCmd = &cobra.Command{
	Use:   "weight",
	Short: "Track body weight",
}

var profileWeightAddCmd = &cobra.Command{
	Use:   "add <kg>",
	Short: "Log a weight measurement and update current weight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kg, err := strconv.ParseFloat(args[0], 64)
		if err != nil || kg <= 0 {
			return fmt.Errorf("invalid weight %q", args[0])
		}
		at, err := parseDateTimeOrNow(logDate, logTime)
		if err != nil {
			return err
		}
		return applyProfileUpdates(cmd, fmt.Sprintf("Logged weight %.1f kg", kg), service.LogWeight(at, kg))
	},
}

var profileActivityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Track physical activity",
}

var profileActivityAddCmd = &cobra.Command{
	Use:   "add <type>",
	Short: "Log an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if logMinutes <= 0 {
			return fmt.Errorf("--minutes must be > 0")
		}
		at, err := parseDateTimeOrNow(logDate, logTime)
		if err != nil {
			return err
		}
		return applyProfileUpdates(cmd, fmt.Sprintf("Logged %s for %d min", args[0], logMinutes), service.LogActivity(at, args[0], logMinutes))
	},
}

// newListCommands builds `<noun> add|rm <value>` for a string-set field.
func newListCommands(noun, short string, add, rm func(string) service.FieldUpdate) *cobra.Command {
	parent := &cobra.Command{Use: noun, Short: short}
	parent.AddCommand(
		&cobra.Command{
			Use:   "add <value>",
			Short: "Add a " + noun,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return applyProfileUpdates(cmd, fmt.Sprintf("Added %s %s", noun, args[0]), add(args[0]))
			},
		},
		&cobra.Command{
			Use:   "rm <value>",
			Short: "Remove a " + noun,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return applyProfileUpdates(cmd, fmt.Sprintf("Removed %s %s", noun, args[0]), rm(args[0]))
			},
		},
	)
	return parent
}

func applyProfileUpdates(cmd *cobra.Command, done string, updates ...service.FieldUpdate) error {
	return withServices(func(svc *services) error {
		p, err := svc.profiles.UpdateFields(updates...)
		if err != nil {
			return err
		}
		if err := requireProfile(p); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), done)
		return nil
	})
}

func displayName(p *model.Profile) string {
	if p.Name == "" {
		return "(unnamed)"
	}
	return p.Name
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileCreateCmd, profileShowCmd, profileSetCmd, profileHydrateCmd,
		profileContactCmd, profileWeightCmd, profileActivityCmd,
		newListCommands("device", "Manage connected devices", service.AddDevice, service.RemoveDevice),
		newListCommands("allergy", "Manage allergies", service.AddAllergy, service.RemoveAllergy),
		newListCommands("condition", "Manage medical conditions", service.AddMedicalCondition, service.RemoveMedicalCondition),
	)
	profileContactCmd.AddCommand(profileContactAddCmd, profileContactListCmd, profileContactRmCmd)
	profileWeightCmd.AddCommand(profileWeightAddCmd)
	profileActivityCmd.AddCommand(profileActivityAddCmd)

	profileCreateCmd.Flags().StringVar(&createName, "name", "", "Display name")
	profileCreateCmd.Flags().StringVar(&createEmail, "email", "", "Email address")
	profileCreateCmd.Flags().IntVar(&createAge, "age", 0, "Age in years")
	profileCreateCmd.Flags().Float64Var(&createWeight, "weight", 0, "Weight in kg")
	profileCreateCmd.Flags().Float64Var(&createHeight, "height", 0, "Height in cm")
	profileCreateCmd.Flags().StringVar(&createGender, "gender", "", "male or female")
	profileCreateCmd.Flags().StringVar(&createLanguage, "language", "", "id or en")
	profileCreateCmd.Flags().StringVar(&createGoal, "goal", "", "Health goal")
	profileCreateCmd.Flags().BoolVar(&createForce, "force", false, "Replace an existing profile")

	profileShowCmd.Flags().BoolVar(&profileJSON, "json", false, "Print the stored profile as JSON")
	profileHydrateCmd.Flags().IntVar(&hydrateML, "ml", service.DefaultHydrationStep, "Amount of water in ml")

	profileContactAddCmd.Flags().StringVar(&contactName, "name", "", "Contact name")
	profileContactAddCmd.Flags().StringVar(&contactRelation, "relation", "", "Relation to you")
	profileContactAddCmd.Flags().StringVar(&contactPhone, "phone", "", "Phone number")

	for _, c := range []*cobra.Command{profileWeightAddCmd, profileActivityAddCmd} {
		c.Flags().StringVar(&logDate, "date", "", "Date YYYY-MM-DD (default now)")
		c.Flags().StringVar(&logTime, "time", "", "Time HH:MM")
	}
	profileActivityAddCmd.Flags().IntVar(&logMinutes, "minutes", 0, "Duration in minutes")
}
