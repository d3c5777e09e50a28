package internal

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/tuba-naf/teamtask-cli/testutil"
)

func newGuardFixture(t *testing.T, routes map[string]http.HandlerFunc) (*Guard, *SessionStore, *testutil.APIServer) {
	t.Helper()
	srv := testutil.NewAPIServer(t, routes)
	session := NewSessionStore(testutil.CreateTempDir(t))
	return NewGuard(session, NewClient(srv.URL, session)), session, srv
}

func TestGuard_Require(t *testing.T) {
	guard, session, _ := newGuardFixture(t, nil)

	if _, err := guard.Require(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Require() with no session error = %v, want ErrNotAuthenticated", err)
	}

	_ = session.SetToken(testutil.MakeToken(t, map[string]interface{}{"sub": "user-3"}))
	userID, err := guard.Require()
	if err != nil {
		t.Fatalf("Require() error = %v", err)
	}
	if userID != "user-3" {
		t.Errorf("Require() = %q, want user-3", userID)
	}
}

func TestGuard_RequireEvictsMalformedToken(t *testing.T) {
	guard, session, _ := newGuardFixture(t, nil)
	_ = session.SetToken("not-a-jwt")

	if _, err := guard.Require(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Require() error = %v, want ErrNotAuthenticated", err)
	}
	if session.IsAuthenticated() {
		t.Error("malformed token left in place; Require should evict it")
	}
}

func TestGuard_LoginStoresToken(t *testing.T) {
	token := testutil.MakeToken(t, map[string]interface{}{"sub": "user-5"})
	guard, session, srv := newGuardFixture(t, map[string]http.HandlerFunc{
		"POST /api/auth/login": func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
		},
	})

	if err := guard.Login(context.Background(), "a@b.c", "hunter22"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got := session.Token(); got != token {
		t.Errorf("stored token = %q, want the issued one", got)
	}
	if got := session.UserID(); got != "user-5" {
		t.Errorf("UserID() = %q, want user-5", got)
	}
	if got := len(srv.Requests()); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestGuard_LoginValidation(t *testing.T) {
	guard, _, srv := newGuardFixture(t, nil)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "hunter22"},
		{"blank email", "   ", "hunter22"},
		{"empty password", "a@b.c", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.Login(context.Background(), tt.email, tt.password)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("Login() error = %v, want *ValidationError", err)
			}
		})
	}

	if got := len(srv.Requests()); got != 0 {
		t.Errorf("%d requests issued for invalid credentials, want none", got)
	}
}

func TestGuard_RegisterLogsStraightIn(t *testing.T) {
	token := testutil.MakeToken(t, map[string]interface{}{"sub": "user-new"})
	guard, session, srv := newGuardFixture(t, map[string]http.HandlerFunc{
		"POST /api/auth/register": func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusCreated, User{ID: "user-new", Email: "new@b.c"})
		},
		"POST /api/auth/login": func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
		},
	})

	user, err := guard.Register(context.Background(), "new@b.c", "longenough")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID != "user-new" {
		t.Errorf("Register() user = %+v, want user-new", user)
	}
	if !session.IsAuthenticated() {
		t.Error("not logged in after Register()")
	}

	reqs := srv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("server saw %d requests, want register then login", len(reqs))
	}
	if reqs[0].Path != "/api/auth/register" || reqs[1].Path != "/api/auth/login" {
		t.Errorf("request order = %q, %q; want register then login", reqs[0].Path, reqs[1].Path)
	}
}

func TestGuard_RegisterRejectsShortPassword(t *testing.T) {
	guard, _, srv := newGuardFixture(t, nil)

	_, err := guard.Register(context.Background(), "a@b.c", "short")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Register() error = %v, want *ValidationError", err)
	}
	if vErr.Field != "password" {
		t.Errorf("ValidationError.Field = %q, want password", vErr.Field)
	}
	if got := len(srv.Requests()); got != 0 {
		t.Errorf("%d requests issued for a short password, want none", got)
	}
}

func TestGuard_LogoutClearsLocallyDespiteServerFailure(t *testing.T) {
	guard, session, _ := newGuardFixture(t, map[string]http.HandlerFunc{
		"POST /api/auth/logout": func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteError(w, http.StatusInternalServerError, "session store down")
		},
	})
	_ = session.SetToken("tok")

	if err := guard.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v, want local success", err)
	}
	if session.IsAuthenticated() {
		t.Error("session survives logout even though the server call failed")
	}
}

func TestGuard_LogoutWithoutSessionSkipsServer(t *testing.T) {
	guard, _, srv := newGuardFixture(t, nil)

	if err := guard.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if got := len(srv.Requests()); got != 0 {
		t.Errorf("%d requests issued for logout with no session, want none", got)
	}
}
