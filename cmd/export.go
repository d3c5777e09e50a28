package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tuba-naf/teamtask-cli/internal"
	"github.com/tuba-naf/teamtask-cli/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [conversation-id]",
	Short: "Export an archived conversation to a file",
	Long: `Export a conversation from the local transcript archive in one of the
supported formats (jsonl, md, yaml, json).

Without a conversation id, the most recently touched conversation is
exported. Use 'teamtask history' to see available ids.`,
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

		conversationID := ""
		if len(args) == 1 {
			conversationID = args[0]
		} else {
			convs, err := archive.Conversations(userID)
			if err != nil {
				return err
			}
			if len(convs) == 0 {
				return fmt.Errorf("nothing to export: the archive is empty")
			}
			conversationID = convs[0].ConversationID
		}

		conv, err := archive.Transcript(conversationID)
		if err != nil {
			return err
		}
		if len(conv.Messages) == 0 {
			return fmt.Errorf("no archived messages for conversation %s", conversationID)
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(exportOutput, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		filename := fmt.Sprintf("conversation_%s.%s", conversationID, exporter.Extension())
		path := filepath.Join(exportOutput, filename)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		if err := exporter.Export(conv, f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		internal.LogInfo("Exported conversation %s to %s", conversationID, path)
		fmt.Println(okStyle.Render("Exported"), idStyle.Render(path))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Export format: jsonl, md, yaml, json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", ".", "Output directory")

	rootCmd.AddCommand(exportCmd)
}
