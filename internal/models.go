package internal

// Message roles as they appear on the wire.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents a registered account
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// TokenResponse is the body returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Task represents a single task owned by the logged-in user
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"is_completed"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// TaskList is the body returned by the task listing endpoint
type TaskList struct {
	Tasks []Task `json:"tasks"`
	Count int    `json:"count"`
}

// ChatMessage is a single message in a conversation
type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Conversation is a conversation with its message history
type Conversation struct {
	ConversationID string        `json:"conversation_id"`
	Title          string        `json:"title,omitempty"`
	Messages       []ChatMessage `json:"messages"`
}

// ChatResponse is the body returned by the chat endpoint
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// Credentials is the request body for register and login
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TaskCreate is the request body for creating a task
type TaskCreate struct {
	Title string `json:"title"`
}

// TaskUpdate is the request body for a partial task update.
// Nil fields are omitted so the server only touches what was sent.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// ChatRequest is the request body for sending a chat message.
// ConversationID is omitted when starting a new conversation.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ErrorBody is the structured error body returned by the server
type ErrorBody struct {
	Detail string `json:"detail"`
}
