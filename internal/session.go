package internal

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// tokenFile is the well-known name of the persisted credential inside
// the profile directory.
const tokenFile = "token"

// SessionStore holds the bearer token for the current session. The token
// is persisted to a file inside the profile directory so a session
// survives between invocations; it is removed on logout or eviction.
//
// The store is the single source of truth for the credential. Everything
// that needs auth state reads it from here rather than keeping a copy.
type SessionStore struct {
	path string
}

// NewSessionStore creates a session store rooted at the given profile directory
func NewSessionStore(profileDir string) *SessionStore {
	return &SessionStore{path: filepath.Join(profileDir, tokenFile)}
}

// SetToken persists the bearer token
func (s *SessionStore) SetToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0600)
}

// Token returns the stored bearer token, or "" when no session exists
func (s *SessionStore) Token() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ClearToken removes the stored token. Clearing an absent token is not
// an error; the user's intent is "no session" either way.
func (s *SessionStore) ClearToken() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsAuthenticated reports whether a token is present
func (s *SessionStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// UserID returns the user id derived from the stored token, or "" when
// there is no session or the token is malformed
func (s *SessionStore) UserID() string {
	return UserIDFromToken(s.Token())
}

// UserIDFromToken extracts the subject claim from a bearer token without
// verifying its signature (verification is the server's job; the client
// only needs the identity baked into the payload). Any structural
// failure, from a wrong segment count to a missing subject, yields ""
// and callers treat that as "not logged in".
func UserIDFromToken(token string) string {
	if token == "" {
		return ""
	}
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
