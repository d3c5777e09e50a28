package internal

import (
	"context"
	"strings"
)

// minPasswordLength matches the registration form's client-side check
const minPasswordLength = 8

// Guard gates protected operations on session validity and owns the
// login/logout flows. Commands and surfaces call Require before touching
// anything protected; an unusable session is evicted and reported so the
// caller can route the user to login.
type Guard struct {
	session *SessionStore
	client  *Client
}

// NewGuard creates a guard over the given session store and API client
func NewGuard(session *SessionStore, client *Client) *Guard {
	return &Guard{session: session, client: client}
}

// Require returns the current user's id, or ErrNotAuthenticated when
// there is no session. A token that is present but undecodable counts as
// no session and is evicted on the spot.
func (g *Guard) Require() (string, error) {
	if !g.session.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	userID := g.session.UserID()
	if userID == "" {
		LogDebug("Stored token is malformed, evicting session")
		if err := g.session.ClearToken(); err != nil {
			LogWarn("Failed to evict malformed session: %v", err)
		}
		return "", ErrNotAuthenticated
	}
	return userID, nil
}

// Login exchanges credentials for a token and stores it
func (g *Guard) Login(ctx context.Context, email, password string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	token, err := g.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return g.session.SetToken(token.AccessToken)
}

// Register creates an account and logs it straight in
func (g *Guard) Register(ctx context.Context, email, password string) (*User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	user, err := g.client.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := g.Login(ctx, email, password); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout tells the server to invalidate the session, then clears the
// local token regardless of the outcome: "log me out" must always
// succeed locally.
func (g *Guard) Logout(ctx context.Context) error {
	if g.session.IsAuthenticated() {
		if err := g.client.Logout(ctx); err != nil {
			LogDebug("Server logout failed, clearing local session anyway: %v", err)
		}
	}
	return g.session.ClearToken()
}

// Session exposes the underlying store for surfaces that derive state
// from it directly
func (g *Guard) Session() *SessionStore {
	return g.session
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	return nil
}
