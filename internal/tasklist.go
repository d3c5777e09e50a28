package internal

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// maxTitleLength matches the server-side limit; checked here so bad
// input never reaches the wire.
const maxTitleLength = 500

// TaskController owns the in-memory task collection for one surface. The
// collection is a cache of server truth: every mutation sends the change
// first and only applies the server's canonical copy on success, so a
// failed call leaves local state untouched. Deletes are not optimistic;
// the entry stays visible until the server confirms.
//
// Mutations are not queued or deduplicated; when two mutations on the
// same task race, the last response to arrive wins locally.
type TaskController struct {
	client *Client

	mu      sync.Mutex
	tasks   []Task
	loadErr string
	loading bool
}

// NewTaskController creates a controller backed by the given API client
func NewTaskController(client *Client) *TaskController {
	return &TaskController{client: client}
}

// Load fetches the full task collection and replaces local state. On
// failure the previous list stays in place and a user-facing message is
// recorded instead.
func (tc *TaskController) Load(ctx context.Context) error {
	tc.mu.Lock()
	tc.loading = true
	tc.mu.Unlock()

	list, err := tc.client.ListTasks(ctx)

	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.loading = false
	if err != nil {
		tc.loadErr = userMessage(err, "Failed to load tasks")
		return err
	}
	tc.tasks = list.Tasks
	tc.loadErr = ""
	return nil
}

// Create sends the trimmed title to the server and prepends the returned
// task: newest-first is a display policy of this client, not something
// the server promises.
func (tc *TaskController) Create(ctx context.Context, title string) (*Task, error) {
	trimmed := strings.TrimSpace(title)
	if err := validateTitle(trimmed); err != nil {
		return nil, err
	}

	task, err := tc.client.CreateTask(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	tc.mu.Lock()
	tc.tasks = append([]Task{*task}, tc.tasks...)
	tc.mu.Unlock()
	return task, nil
}

// Toggle sends the complement of the task's current completion state and
// replaces the local entry with the server's canonical copy on success.
func (tc *TaskController) Toggle(ctx context.Context, id string) (*Task, error) {
	tc.mu.Lock()
	current, ok := tc.find(id)
	tc.mu.Unlock()
	if !ok {
		return nil, &ValidationError{Field: "task", Reason: "unknown task id"}
	}

	completed := !current.IsCompleted
	task, err := tc.client.UpdateTask(ctx, id, TaskUpdate{IsCompleted: &completed})
	if err != nil {
		return nil, err
	}

	tc.replace(task)
	return task, nil
}

// Rename sends the trimmed title and replaces the local entry with the
// server's canonical copy on success.
func (tc *TaskController) Rename(ctx context.Context, id, title string) (*Task, error) {
	trimmed := strings.TrimSpace(title)
	if err := validateTitle(trimmed); err != nil {
		return nil, err
	}

	task, err := tc.client.UpdateTask(ctx, id, TaskUpdate{Title: &trimmed})
	if err != nil {
		return nil, err
	}

	tc.replace(task)
	return task, nil
}

// Remove deletes a task. The local entry is only dropped once the server
// confirms, so a transient failure never silently loses an item.
func (tc *TaskController) Remove(ctx context.Context, id string) error {
	if err := tc.client.DeleteTask(ctx, id); err != nil {
		return err
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	for i, t := range tc.tasks {
		if t.ID == id {
			tc.tasks = append(tc.tasks[:i], tc.tasks[i+1:]...)
			break
		}
	}
	return nil
}

// Tasks returns a copy of the current collection
func (tc *TaskController) Tasks() []Task {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	out := make([]Task, len(tc.tasks))
	copy(out, tc.tasks)
	return out
}

// Err returns the recorded load error message, "" when the last load succeeded
func (tc *TaskController) Err() string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.loadErr
}

// Loading reports whether a load is in flight
func (tc *TaskController) Loading() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.loading
}

// Stats returns the total and completed counts
func (tc *TaskController) Stats() (total, completed int) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for _, t := range tc.tasks {
		if t.IsCompleted {
			completed++
		}
	}
	return len(tc.tasks), completed
}

func (tc *TaskController) find(id string) (Task, bool) {
	for _, t := range tc.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

func (tc *TaskController) replace(task *Task) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for i, t := range tc.tasks {
		if t.ID == task.ID {
			tc.tasks[i] = *task
			return
		}
	}
}

func validateTitle(trimmed string) error {
	if trimmed == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if len(trimmed) > maxTitleLength {
		return &ValidationError{Field: "title", Reason: "must be at most 500 characters"}
	}
	return nil
}

// userMessage picks the server's detail message when one exists, the
// fallback otherwise.
func userMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != genericFailure {
		return apiErr.Detail
	}
	return fallback
}
