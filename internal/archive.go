package internal

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Archive is a local append-only record of chat exchanges, kept so past
// conversations can be listed and exported without the server. It is a
// convenience mirror, never the source of truth.
type Archive struct {
	db *sql.DB
}

// ArchivedConversation summarizes one conversation held in the archive
type ArchivedConversation struct {
	ConversationID string
	MessageCount   int
	LastMessageAt  string
}

const archiveSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	conversation_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, id);
CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, id);
`

// OpenArchive opens (creating if necessary) the archive database at path
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &ArchiveError{Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &ArchiveError{Op: "open", Err: err}
	}

	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, &ArchiveError{Op: "open", Err: err}
	}

	return &Archive{db: db}, nil
}

// Close closes the underlying database
func (a *Archive) Close() error {
	return a.db.Close()
}

// Append records messages for a conversation. Messages without a
// timestamp are stamped with the current time.
func (a *Archive) Append(userID, conversationID string, messages ...ChatMessage) error {
	tx, err := a.db.Begin()
	if err != nil {
		return &ArchiveError{Op: "append", Err: err}
	}

	stmt := "INSERT INTO messages (user_id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)"
	for _, msg := range messages {
		createdAt := msg.CreatedAt
		if createdAt == "" {
			createdAt = time.Now().UTC().Format(time.RFC3339)
		}
		if _, err := tx.Exec(stmt, userID, conversationID, msg.Role, msg.Content, createdAt); err != nil {
			tx.Rollback()
			return &ArchiveError{Op: "append", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &ArchiveError{Op: "append", Err: err}
	}
	return nil
}

// Conversations lists the archived conversations for a user, most
// recently touched first.
func (a *Archive) Conversations(userID string) ([]ArchivedConversation, error) {
	query := `
		SELECT conversation_id, COUNT(*), MAX(created_at)
		FROM messages
		WHERE user_id = ?
		GROUP BY conversation_id
		ORDER BY MAX(id) DESC`
	rows, err := a.db.Query(query, userID)
	if err != nil {
		return nil, &ArchiveError{Op: "query", Err: err}
	}
	defer rows.Close()

	var convs []ArchivedConversation
	for rows.Next() {
		var c ArchivedConversation
		if err := rows.Scan(&c.ConversationID, &c.MessageCount, &c.LastMessageAt); err != nil {
			return nil, &ArchiveError{Op: "query", Err: err}
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &ArchiveError{Op: "query", Err: err}
	}
	return convs, nil
}

// Transcript returns the full message history of one archived conversation
func (a *Archive) Transcript(conversationID string) (*Conversation, error) {
	query := `
		SELECT role, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY id ASC`
	rows, err := a.db.Query(query, conversationID)
	if err != nil {
		return nil, &ArchiveError{Op: "query", Err: err}
	}
	defer rows.Close()

	conv := &Conversation{ConversationID: conversationID}
	for rows.Next() {
		var msg ChatMessage
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, &ArchiveError{Op: "query", Err: err}
		}
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &ArchiveError{Op: "query", Err: err}
	}
	return conv, nil
}
