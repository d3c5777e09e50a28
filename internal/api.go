package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// genericFailure is the fallback message when the server's error body
// cannot be parsed.
const genericFailure = "Request failed"

// Client issues authenticated requests against the task service. It reads
// the bearer token from the session store at call time, decodes the
// server's structured error bodies into APIError, and evicts the session
// when the server rejects the credential. Requests are never retried.
type Client struct {
	baseURL string
	session *SessionStore
	httpc   *http.Client
}

// NewClient creates an API client for the given server base URL
func NewClient(baseURL string, session *SessionStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		httpc:   &http.Client{},
	}
}

// do issues a single request and returns the raw response body. A 2xx
// response with no body (e.g. 204 on delete) returns a nil slice. On a
// 401 the stored token, if one was attached, is cleared: the server has
// declared the session invalid and every surface treats it that way.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token := c.session.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			if clearErr := c.session.ClearToken(); clearErr != nil {
				LogWarn("Failed to evict session after 401: %v", clearErr)
			}
		}
		detail := genericFailure
		var errBody ErrorBody
		if err := json.Unmarshal(data, &errBody); err == nil && errBody.Detail != "" {
			detail = errBody.Detail
		}
		return nil, &APIError{Status: resp.StatusCode, Detail: detail}
	}

	if resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/auth/register", Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token. The caller is
// responsible for storing it.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/auth/login", Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var token TokenResponse
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	return &token, nil
}

// Logout invalidates the session server-side
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil)
	return err
}

// ListTasks fetches the full task collection for the current session
func (c *Client) ListTasks(ctx context.Context) (*TaskList, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/tasks", nil)
	if err != nil {
		return nil, err
	}
	var list TaskList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse task list: %w", err)
	}
	return &list, nil
}

// CreateTask creates a task and returns the server's canonical copy
func (c *Client) CreateTask(ctx context.Context, title string) (*Task, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/tasks", TaskCreate{Title: title})
	if err != nil {
		return nil, err
	}
	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task: %w", err)
	}
	return &task, nil
}

// UpdateTask applies a partial update and returns the canonical copy
func (c *Client) UpdateTask(ctx context.Context, id string, update TaskUpdate) (*Task, error) {
	data, err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), update)
	if err != nil {
		return nil, err
	}
	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task: %w", err)
	}
	return &task, nil
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil)
	return err
}

// SendChat sends a message to the assistant. conversationID threads the
// message into an existing conversation; "" asks the server to start a
// new one.
func (c *Client) SendChat(ctx context.Context, userID, message, conversationID string) (*ChatResponse, error) {
	path := fmt.Sprintf("/api/%s/chat", url.PathEscape(userID))
	data, err := c.do(ctx, http.MethodPost, path, ChatRequest{Message: message, ConversationID: conversationID})
	if err != nil {
		return nil, err
	}
	var reply ChatResponse
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("failed to parse chat response: %w", err)
	}
	return &reply, nil
}

// RecentConversation fetches the user's most recent conversation. Returns
// nil with no error when the user has no conversations yet.
func (c *Client) RecentConversation(ctx context.Context, userID string) (*Conversation, error) {
	path := fmt.Sprintf("/api/%s/conversations/recent", url.PathEscape(userID))
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse conversation: %w", err)
	}
	if conv.ConversationID == "" {
		return nil, nil
	}
	return &conv, nil
}
