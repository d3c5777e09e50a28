package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tuba-naf/teamtask-cli/internal"
)

// JSONLExporter exports transcripts in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a conversation to JSONL format
func (e *JSONLExporter) Export(conv *internal.Conversation, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range conv.Messages {
		obj := map[string]interface{}{
			"role":    msg.Role,
			"content": msg.Content,
		}
		if msg.CreatedAt != "" {
			obj["created_at"] = msg.CreatedAt
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
