package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a non-2xx response from the server
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error [%d]: %s", e.Status, e.Detail)
}

// ValidationError represents client-side input validation failures.
// These are caught before any request is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigError represents errors reading or writing the profile config
type ConfigError struct {
	Path string
	Op   string // "read", "write", "parse"
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ArchiveError represents errors accessing the local transcript archive
type ArchiveError struct {
	Op  string // "open", "append", "query"
	Err error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive error: %s: %v", e.Op, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// ErrNotAuthenticated is returned when a protected operation runs
// without a usable session.
var ErrNotAuthenticated = errors.New("not logged in (run 'teamtask login')")

// IsUnauthorized reports whether err is a 401 from the server
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsUnavailable reports whether err is a 503 from the server
func IsUnavailable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable
}
