package internal

import (
	"context"
	"strings"
	"sync"
)

// unavailableMessage is shown when the chat service itself is down, as
// opposed to a request that merely failed.
const unavailableMessage = "Service temporarily unavailable. Please try again."

// ConversationController owns the chat state for one surface: message
// history, the conversation anchor, the input buffer and the in-flight
// flag. Each surface gets its own instance; a full-page chat and a
// floating one never share history.
//
// Send is optimistic: the user's message is appended and the input buffer
// cleared before the request goes out. On failure the append is rolled
// back and the buffer restored so the user can retry without retyping.
// At most one send is in flight at a time; further sends during that
// window are silent no-ops, which keeps request order strict per
// conversation.
type ConversationController struct {
	client  *Client
	userID  string
	archive *Archive // optional; successful exchanges are recorded here

	mu             sync.Mutex
	conversationID string
	messages       []ChatMessage
	input          string
	sending        bool
	errMsg         string
	gen            int
}

// NewConversationController creates a controller for the given user's chat
func NewConversationController(client *Client, userID string) *ConversationController {
	return &ConversationController{client: client, userID: userID}
}

// WithArchive attaches a local transcript archive. Archive failures are
// logged and never affect the send path.
func (cc *ConversationController) WithArchive(archive *Archive) *ConversationController {
	cc.archive = archive
	return cc
}

// LoadRecent populates the controller from the user's most recent
// conversation, if any. A 401 is returned to the caller (the surface is
// about to be abandoned); any other failure is logged and swallowed.
// History is a convenience, and the widget starts empty rather than
// blocking chat on it.
func (cc *ConversationController) LoadRecent(ctx context.Context) error {
	conv, err := cc.client.RecentConversation(ctx, cc.userID)
	if err != nil {
		if IsUnauthorized(err) {
			return err
		}
		LogDebug("Recent conversation load failed, starting empty: %v", err)
		return nil
	}
	if conv == nil {
		return nil
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.conversationID = conv.ConversationID
	cc.messages = conv.Messages
	return nil
}

// Send delivers the input text to the assistant. Empty input and sends
// issued while another is in flight are silent no-ops.
func (cc *ConversationController) Send(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)

	cc.mu.Lock()
	if trimmed == "" || cc.sending {
		cc.mu.Unlock()
		return nil
	}
	gen := cc.gen
	conversationID := cc.conversationID
	cc.messages = append(cc.messages, ChatMessage{Role: RoleUser, Content: trimmed})
	cc.input = ""
	cc.errMsg = ""
	cc.sending = true
	cc.mu.Unlock()

	reply, err := cc.client.SendChat(ctx, cc.userID, trimmed, conversationID)

	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.gen != gen {
		// Surface was torn down while the call was in flight; the
		// response has no owner anymore.
		return nil
	}
	cc.sending = false

	if err != nil {
		if IsUnauthorized(err) {
			// No rollback or message: the session is evicted and the
			// surface is being abandoned.
			return err
		}
		cc.messages = cc.messages[:len(cc.messages)-1]
		cc.input = trimmed
		if IsUnavailable(err) {
			cc.errMsg = unavailableMessage
		} else {
			cc.errMsg = userMessage(err, "Failed to send message. Please try again.")
		}
		return err
	}

	cc.conversationID = reply.ConversationID
	assistant := ChatMessage{Role: RoleAssistant, Content: reply.Response}
	cc.messages = append(cc.messages, assistant)

	if cc.archive != nil {
		user := ChatMessage{Role: RoleUser, Content: trimmed}
		if err := cc.archive.Append(cc.userID, reply.ConversationID, user, assistant); err != nil {
			LogDebug("Failed to archive exchange: %v", err)
		}
	}
	return nil
}

// StartNew clears the conversation anchor and history. No server call is
// made; the next Send makes the server allocate a fresh conversation. An
// in-flight send belongs to the abandoned conversation, so its result is
// discarded the same way Teardown discards it.
func (cc *ConversationController) StartNew() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.gen++
	cc.sending = false
	cc.conversationID = ""
	cc.messages = nil
	cc.errMsg = ""
}

// Teardown invalidates in-flight sends so late responses are discarded
// instead of applied to a surface that no longer exists.
func (cc *ConversationController) Teardown() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.gen++
	cc.sending = false
}

// Messages returns a copy of the message history
func (cc *ConversationController) Messages() []ChatMessage {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	out := make([]ChatMessage, len(cc.messages))
	copy(out, cc.messages)
	return out
}

// ConversationID returns the current conversation anchor, "" when the
// next send starts a new conversation
func (cc *ConversationController) ConversationID() string {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.conversationID
}

// Input returns the input buffer
func (cc *ConversationController) Input() string {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.input
}

// SetInput replaces the input buffer
func (cc *ConversationController) SetInput(text string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.input = text
}

// Sending reports whether a send is in flight
func (cc *ConversationController) Sending() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.sending
}

// Err returns the last send error message, "" when the last send succeeded
func (cc *ConversationController) Err() string {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.errMsg
}

// UserID returns the user this conversation belongs to
func (cc *ConversationController) UserID() string {
	return cc.userID
}
