// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All calls against the remote collection go through this interface.
// Neither the sync client nor the commands know about HTTP.
type Service interface {
	// ListTasks returns the full collection in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns it as the server stored it.
	CreateTask(ctx context.Context, title string, state CompletionState) (Task, error)

	// UpdateTask applies a partial update to a task.
	// Returns ErrNotFound if the server reports the id absent.
	UpdateTask(ctx context.Context, id TaskID, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task.
	// Returns ErrNotFound if the server reports the id absent.
	DeleteTask(ctx context.Context, id TaskID) error
}
