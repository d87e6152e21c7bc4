package healthguard

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Manage consultation transcripts",
}

var (
	chatSession  string
	chatReply    string
	chatJSON     bool
	chatClearYes bool
)

// recordedReply answers with a reply obtained outside this program, so a
// transcript can be kept without an AI service configured.
type recordedReply string

func (r recordedReply) Advise(_ context.Context, _ []model.ChatMessage, _ string) (string, error) {
	return string(r), nil
}

var chatSendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Record a consultation exchange in a new or existing session",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return fmt.Errorf("message is required")
		}
		return withServices(func(svc *services) error {
			flows := svc.flows()
			if chatReply != "" {
				flows.Advisor = recordedReply(chatReply)
			}
			res, err := flows.Consult(cmd.Context(), chatSession, query)
			if err != nil {
				return err
			}
			if res.Session == nil {
				return fmt.Errorf("session %s not found; nothing recorded", chatSession)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s: %s\n", res.Session.ID, res.Reply)
			return nil
		})
	},
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			sessions, err := svc.chat.ListSessions()
			if err != nil {
				return err
			}
			if chatJSON {
				return printJSON(cmd.OutOrStdout(), sessions)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tWHEN\tMESSAGES\tTITLE")
			for _, s := range sessions {
				fmt.Fprintf(out, "%s\t%s\t%d\t%s\n", s.ID, formatMillis(s.Timestamp), len(s.Messages), s.Title)
			}
			return nil
		})
	},
}

var chatShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a session transcript (or the greeting when no id is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		return withServices(func(svc *services) error {
			lang := model.LanguageID
			if p, err := svc.profiles.Load(); err != nil {
				return err
			} else if p != nil {
				lang = p.Language
			}
			if id != "" {
				s, err := svc.chat.Session(id)
				if err != nil {
					return err
				}
				if s == nil {
					return fmt.Errorf("session %s not found", id)
				}
			}
			messages, err := svc.chat.Conversation(id, lang)
			if err != nil {
				return err
			}
			if chatJSON {
				return printJSON(cmd.OutOrStdout(), messages)
			}
			for _, m := range messages {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", m.Role, m.Text)
			}
			return nil
		})
	},
}

var chatClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !chatClearYes {
			return fmt.Errorf("refusing to clear chat history without --yes")
		}
		return withServices(func(svc *services) error {
			if err := svc.chat.ClearAll(); err != nil {
				return err
			}
			lang := model.LanguageID
			if p, err := svc.profiles.Load(); err == nil && p != nil {
				lang = p.Language
			}
			fmt.Fprintln(cmd.OutOrStdout(), service.ClearedNotice(lang).Text)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatSendCmd, chatListCmd, chatShowCmd, chatClearCmd)

	chatSendCmd.Flags().StringVar(&chatSession, "session", "", "Session id to continue (default: start a new session)")
	chatSendCmd.Flags().StringVar(&chatReply, "reply", "", "Advisor reply to record with the message")
	chatListCmd.Flags().BoolVar(&chatJSON, "json", false, "Print sessions as JSON")
	chatShowCmd.Flags().BoolVar(&chatJSON, "json", false, "Print messages as JSON")
	chatClearCmd.Flags().BoolVar(&chatClearYes, "yes", false, "Confirm clearing all sessions")
}
