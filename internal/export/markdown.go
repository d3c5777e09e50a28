package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/tuba-naf/teamtask-cli/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a conversation to Markdown format
func (e *MarkdownExporter) Export(conv *internal.Conversation, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# Conversation %s\n\n", conv.ConversationID)

	if conv.Title != "" {
		_, _ = fmt.Fprintf(w, "**Title:** %s  \n", conv.Title)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(conv.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	// Messages
	for i, msg := range conv.Messages {
		timestamp := ""
		if msg.CreatedAt != "" {
			timestamp = fmt.Sprintf(" (%s)", msg.CreatedAt)
		}

		content := escapeMarkdown(msg.Content)

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", roleLabel(msg.Role), timestamp, content)

		if i < len(conv.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func roleLabel(role string) string {
	switch role {
	case internal.RoleUser:
		return "You"
	case internal.RoleAssistant:
		return "Assistant"
	default:
		return role
	}
}

// escapeMarkdown escapes markdown special characters outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
