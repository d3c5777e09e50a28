package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/tuba-naf/teamtask-cli/testutil"
)

// taskServer is a tiny in-memory task backend for controller tests
type taskServer struct {
	mu    sync.Mutex
	tasks []Task
	fail  bool // force 500s on every route
}

func (s *taskServer) routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /api/tasks": func(w http.ResponseWriter, r *http.Request) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.fail {
				testutil.WriteError(w, http.StatusInternalServerError, "Something broke")
				return
			}
			testutil.WriteJSON(w, http.StatusOK, TaskList{Tasks: s.tasks, Count: len(s.tasks)})
		},
		"POST /api/tasks": func(w http.ResponseWriter, r *http.Request) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.fail {
				testutil.WriteError(w, http.StatusInternalServerError, "Something broke")
				return
			}
			var req TaskCreate
			_ = json.NewDecoder(r.Body).Decode(&req)
			task := Task{ID: "t-new", Title: req.Title}
			s.tasks = append(s.tasks, task)
			testutil.WriteJSON(w, http.StatusCreated, task)
		},
		"PATCH /api/tasks/{id}": func(w http.ResponseWriter, r *http.Request) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.fail {
				testutil.WriteError(w, http.StatusInternalServerError, "Something broke")
				return
			}
			id := r.PathValue("id")
			var req TaskUpdate
			_ = json.NewDecoder(r.Body).Decode(&req)
			for i := range s.tasks {
				if s.tasks[i].ID != id {
					continue
				}
				if req.Title != nil {
					s.tasks[i].Title = *req.Title
				}
				if req.IsCompleted != nil {
					s.tasks[i].IsCompleted = *req.IsCompleted
				}
				s.tasks[i].UpdatedAt = "2026-01-02T00:00:00Z"
				testutil.WriteJSON(w, http.StatusOK, s.tasks[i])
				return
			}
			testutil.WriteError(w, http.StatusNotFound, "Task not found")
		},
		"DELETE /api/tasks/{id}": func(w http.ResponseWriter, r *http.Request) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.fail {
				testutil.WriteError(w, http.StatusInternalServerError, "Something broke")
				return
			}
			w.WriteHeader(http.StatusNoContent)
		},
	}
}

func newTaskFixture(t *testing.T, seed []Task) (*TaskController, *taskServer, *testutil.APIServer) {
	t.Helper()
	backend := &taskServer{tasks: seed}
	srv := testutil.NewAPIServer(t, backend.routes())
	session := NewSessionStore(testutil.CreateTempDir(t))
	_ = session.SetToken("tok")
	return NewTaskController(NewClient(srv.URL, session)), backend, srv
}

func TestTaskController_LoadReplacesState(t *testing.T) {
	tc, _, _ := newTaskFixture(t, []Task{
		{ID: "t1", Title: "First"},
		{ID: "t2", Title: "Second", IsCompleted: true},
	})

	if err := tc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := len(tc.Tasks()); got != 2 {
		t.Errorf("len(Tasks()) = %d, want 2", got)
	}
	if tc.Err() != "" {
		t.Errorf("Err() = %q, want empty after successful load", tc.Err())
	}
	if tc.Loading() {
		t.Error("Loading() = true after load finished")
	}

	total, completed := tc.Stats()
	if total != 2 || completed != 1 {
		t.Errorf("Stats() = (%d, %d), want (2, 1)", total, completed)
	}
}

func TestTaskController_LoadFailureKeepsPriorList(t *testing.T) {
	tc, backend, _ := newTaskFixture(t, []Task{{ID: "t1", Title: "Keep me"}})

	if err := tc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	backend.mu.Lock()
	backend.fail = true
	backend.mu.Unlock()

	if err := tc.Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil, want failure")
	}
	if got := len(tc.Tasks()); got != 1 {
		t.Errorf("len(Tasks()) = %d after failed reload, want prior list intact", got)
	}
	if tc.Err() == "" {
		t.Error("Err() = empty, want a recorded message after failed load")
	}
}

func TestTaskController_CreateTrimsAndPrepends(t *testing.T) {
	tc, _, srv := newTaskFixture(t, []Task{{ID: "t1", Title: "Existing"}})
	if err := tc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	task, err := tc.Create(context.Background(), "  Buy milk  ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.Title != "Buy milk" {
		t.Errorf("created title = %q, want trimmed %q", task.Title, "Buy milk")
	}

	var sent TaskCreate
	testutil.JSONUnmarshal(t, srv.LastRequest(t).Body, &sent)
	if sent.Title != "Buy milk" {
		t.Errorf("wire title = %q, want trimmed %q", sent.Title, "Buy milk")
	}

	tasks := tc.Tasks()
	if len(tasks) != 2 || tasks[0].ID != "t-new" {
		t.Errorf("Tasks() head = %+v, want the new task prepended", tasks)
	}
}

func TestTaskController_CreateValidation(t *testing.T) {
	tc, _, srv := newTaskFixture(t, nil)

	tests := []struct {
		name  string
		title string
	}{
		{"empty", ""},
		{"whitespace only", "   \t  "},
		{"too long", string(make([]byte, 501))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tc.Create(context.Background(), tt.title)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("Create(%q) error = %v, want *ValidationError", tt.name, err)
			}
		})
	}

	if got := len(srv.Requests()); got != 0 {
		t.Errorf("%d requests issued for invalid titles, want none", got)
	}
}

func TestTaskController_ToggleRoundTrip(t *testing.T) {
	tc, _, _ := newTaskFixture(t, []Task{{ID: "t1", Title: "Flip me"}})
	if err := tc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	first, err := tc.Toggle(context.Background(), "t1")
	if err != nil {
		t.Fatalf("first Toggle() error = %v", err)
	}
	if !first.IsCompleted {
		t.Error("first Toggle() left task not completed")
	}

	second, err := tc.Toggle(context.Background(), "t1")
	if err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}
	if second.IsCompleted {
		t.Error("two toggles did not return the task to its original state")
	}

	if got := tc.Tasks()[0].IsCompleted; got {
		t.Error("local state not updated with the server's canonical copy")
	}
}

func TestTaskController_RenameReplacesLocalEntry(t *testing.T) {
	tc, _, _ := newTaskFixture(t, []Task{
		{ID: "t1", Title: "Old name"},
		{ID: "t2", Title: "Untouched"},
	})
	if err := tc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	task, err := tc.Rename(context.Background(), "t1", "  New name  ")
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if task.Title != "New name" {
		t.Errorf("returned title = %q, want trimmed %q", task.Title, "New name")
	}

	tasks := tc.Tasks()
	if tasks[0].Title != "New name" {
		t.Errorf("Tasks()[0].Title = %q, want the canonical copy in place", tasks[0].Title)
	}
	if tasks[0].UpdatedAt == "" {
		t.Error("local entry missing the server's updated timestamp")
	}
	if tasks[1].Title != "Untouched" {
		t.Errorf("Tasks()[1].Title = %q, want other entries untouched", tasks[1].Title)
	}
}

func TestTaskController_MutationFailureLeavesStateUnchanged(t *testing.T) {
	tc, backend, _ := newTaskFixture(t, []Task{{ID: "t1", Title: "Original"}})
	if err := tc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	backend.mu.Lock()
	backend.fail = true
	backend.mu.Unlock()

	if _, err := tc.Toggle(context.Background(), "t1"); err == nil {
		t.Fatal("Toggle() error = nil, want failure")
	}
	if _, err := tc.Rename(context.Background(), "t1", "Changed"); err == nil {
		t.Fatal("Rename() error = nil, want failure")
	}
	if err := tc.Remove(context.Background(), "t1"); err == nil {
		t.Fatal("Remove() error = nil, want failure")
	}

	tasks := tc.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Original" || tasks[0].IsCompleted {
		t.Errorf("Tasks() = %+v, want untouched after failed mutations", tasks)
	}
}

func TestTaskController_RemoveIsNotOptimistic(t *testing.T) {
	release := make(chan struct{})
	received := make(chan struct{})

	routes := map[string]http.HandlerFunc{
		"GET /api/tasks": func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusOK, TaskList{Tasks: []Task{{ID: "t1", Title: "Slow delete"}}, Count: 1})
		},
		"DELETE /api/tasks/{id}": func(w http.ResponseWriter, r *http.Request) {
			close(received)
			<-release
			w.WriteHeader(http.StatusNoContent)
		},
	}
	srv := testutil.NewAPIServer(t, routes)
	session := NewSessionStore(testutil.CreateTempDir(t))
	_ = session.SetToken("tok")
	tc := NewTaskController(NewClient(srv.URL, session))

	if err := tc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- tc.Remove(context.Background(), "t1") }()

	<-received
	// The delete is in flight and unconfirmed; the entry must still be visible.
	if got := len(tc.Tasks()); got != 1 {
		t.Errorf("len(Tasks()) = %d during pending delete, want 1", got)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got := len(tc.Tasks()); got != 0 {
		t.Errorf("len(Tasks()) = %d after confirmed delete, want 0", got)
	}
}
