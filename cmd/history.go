package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tuba-naf/teamtask-cli/internal"
)

var historyCmd = &cobra.Command{
	Use:   "history [conversation-id]",
	Short: "Browse locally archived conversations",
	Long: `List conversations recorded in the local transcript archive, or print
one transcript when a conversation id is given.

The archive only holds exchanges sent from this machine; it works
without the server.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		userID, err := e.guard.Require()
		if err != nil {
			return err
		}

		archive, err := e.openArchive()
		if err != nil {
			return err
		}
		defer archive.Close()

		if len(args) == 1 {
			return printTranscript(archive, args[0])
		}
		return printConversations(archive, userID)
	},
}

func printConversations(archive *internal.Archive, userID string) error {
	convs, err := archive.Conversations(userID)
	if err != nil {
		return err
	}

	if len(convs) == 0 {
		fmt.Println(mutedStyle.Render("No archived conversations yet. They appear after you chat."))
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("CONVERSATIONS — %d archived", len(convs))))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, c := range convs {
		fmt.Fprintf(w, "%s\t%d messages\t%s\n",
			idStyle.Render(c.ConversationID),
			c.MessageCount,
			dateStyle.Render(c.LastMessageAt),
		)
	}
	return w.Flush()
}

func printTranscript(archive *internal.Archive, conversationID string) error {
	conv, err := archive.Transcript(conversationID)
	if err != nil {
		return err
	}

	if len(conv.Messages) == 0 {
		return fmt.Errorf("no archived messages for conversation %s", conversationID)
	}

	for _, msg := range conv.Messages {
		label := "You"
		if msg.Role == internal.RoleAssistant {
			label = "Assistant"
		}
		fmt.Println(titleStyle.Render(label), dateStyle.Render(msg.CreatedAt))
		fmt.Println(msg.Content)
		fmt.Println()
	}
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
