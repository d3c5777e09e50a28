package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest captures one request seen by the test server
type RecordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

// APIServer is an httptest server with per-route handlers and request
// recording, for exercising the API client and controllers.
type APIServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewAPIServer starts a test server routing patterns like
// "POST /api/tasks" to their handlers. Unmatched requests get a 404 with
// a detail body, matching the real service's error shape.
func NewAPIServer(t *testing.T, routes map[string]http.HandlerFunc) *APIServer {
	t.Helper()

	srv := &APIServer{}
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "Not found")
	})

	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		srv.mu.Lock()
		srv.requests = append(srv.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		srv.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// Requests returns a copy of all recorded requests
func (s *APIServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent recorded request
func (s *APIServer) LastRequest(t *testing.T) RecordedRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("No requests recorded")
	}
	return s.requests[len(s.requests)-1]
}

// WriteJSON writes a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a {"detail": ...} error body with the given status
func WriteError(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, map[string]string{"detail": detail})
}
