package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuba-naf/teamtask-cli/internal"
	"github.com/tuba-naf/teamtask-cli/internal/tui"
)

var chatMessage string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the AI task assistant",
	Long: `Open the full-screen chat surface, or send a single message with -m.

The assistant can read and change your tasks ("add a task to buy
groceries", "what's left for today?"). Without -m, the surface resumes
your most recent conversation; ctrl+n starts a fresh one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		archive, err := e.openArchive()
		if err != nil {
			internal.LogWarn("Transcript archive unavailable: %v", err)
			archive = nil
		} else {
			defer archive.Close()
		}

		if chatMessage != "" {
			return oneShotChat(cmd, e, archive, chatMessage)
		}

		return tui.Run(e.guard, e.client, archive, tui.SurfaceChat)
	},
}

// oneShotChat sends one message and prints the reply, threading onto the
// most recent conversation.
func oneShotChat(cmd *cobra.Command, e *env, archive *internal.Archive, message string) error {
	userID, err := e.guard.Require()
	if err != nil {
		return err
	}

	ctrl := internal.NewConversationController(e.client, userID)
	if archive != nil {
		ctrl = ctrl.WithArchive(archive)
	}
	if err := ctrl.LoadRecent(cmd.Context()); err != nil {
		return err
	}

	if err := ctrl.Send(cmd.Context(), message); err != nil {
		if msg := ctrl.Err(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}

	messages := ctrl.Messages()
	if len(messages) == 0 {
		return nil
	}
	last := messages[len(messages)-1]
	if last.Role == internal.RoleAssistant {
		fmt.Println(last.Content)
	}
	return nil
}

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"board"},
	Short:   "Interactive task board with a floating chat overlay",
	Long: `Open the interactive board: browse and edit tasks, and press 'c' for
the chat overlay. When no session exists the board shows the login form
first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		archive, err := e.openArchive()
		if err != nil {
			internal.LogWarn("Transcript archive unavailable: %v", err)
			archive = nil
		} else {
			defer archive.Close()
		}

		return tui.Run(e.guard, e.client, archive, tui.SurfaceBoard)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message instead of opening the surface")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(dashboardCmd)
}
