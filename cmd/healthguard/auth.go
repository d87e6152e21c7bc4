package healthguard

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Register, verify and sign in local accounts",
}

var (
	authEmail    string
	authPassword string
	registerIn   service.RegisterInput
	regGender    string
	regLanguage  string
)

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an account (unverified until `auth verify`)",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := registerIn
		in.Email, in.Password = authEmail, authPassword
		if regGender != "" {
			g, ok := model.ParseGender(regGender)
			if !ok {
				return fmt.Errorf("invalid --gender %q (expected male|female)", regGender)
			}
			in.Gender = g
		}
		if regLanguage != "" {
			lang, ok := model.ParseLanguage(regLanguage)
			if !ok {
				return fmt.Errorf("invalid --language %q (expected id|en)", regLanguage)
			}
			in.Language = lang
		}
		return withServices(func(svc *services) error {
			user, err := svc.auth.Register(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s; run `healthguard auth verify --email %s` to activate\n", user.Email, user.Email)
			return nil
		})
	},
}

var authVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Mark an account as verified",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			if err := svc.auth.Verify(authEmail); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Verified %s\n", authEmail)
			return nil
		})
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and make the account the active profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			user, err := svc.auth.Login(authEmail, authPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", displayName(user))
			return nil
		})
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out (the profile stays on this machine)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			if err := svc.auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		})
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sign-in state and registered accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			ok, err := svc.profiles.Authenticated()
			if err != nil {
				return err
			}
			users, err := svc.auth.Users()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ok {
				p, err := svc.profiles.Load()
				if err != nil {
					return err
				}
				name := "(no profile)"
				if p != nil {
					name = displayName(p)
				}
				fmt.Fprintf(out, "Signed in: yes (%s)\n", name)
			} else {
				fmt.Fprintln(out, "Signed in: no")
			}
			fmt.Fprintf(out, "Registered accounts: %d\n", len(users))
			for _, u := range users {
				fmt.Fprintf(out, "  %s\tverified=%t\n", u.Email, u.IsVerified)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authRegisterCmd, authVerifyCmd, authLoginCmd, authLogoutCmd, authStatusCmd)

	for _, c := range []*cobra.Command{authRegisterCmd, authVerifyCmd, authLoginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		_ = c.MarkFlagRequired("email")
	}
	for _, c := range []*cobra.Command{authRegisterCmd, authLoginCmd} {
		c.Flags().StringVar(&authPassword, "password", "", "Account password")
		_ = c.MarkFlagRequired("password")
	}
	authRegisterCmd.Flags().StringVar(&registerIn.Name, "name", "", "Display name")
	authRegisterCmd.Flags().IntVar(&registerIn.Age, "age", 0, "Age in years")
	authRegisterCmd.Flags().Float64Var(&registerIn.Weight, "weight", 0, "Weight in kg")
	authRegisterCmd.Flags().Float64Var(&registerIn.Height, "height", 0, "Height in cm")
	authRegisterCmd.Flags().StringVar(&regGender, "gender", "", "male or female")
	authRegisterCmd.Flags().StringVar(&regLanguage, "language", "", "id or en")
	authRegisterCmd.Flags().StringVar(&registerIn.Goal, "goal", "", "Health goal")
}
