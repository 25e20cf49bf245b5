// Package service defines the backend-agnostic interface for task operations.
package service

import "strings"

// TaskID is a server-assigned task identifier.
// Numeric ids are held in their decimal form.
type TaskID string

// CompletionState is the two-state completion flag of a task.
type CompletionState int

const (
	// Pending is the state of a task that is not done yet.
	Pending CompletionState = iota

	// Done is the state of a completed task.
	Done
)

// String returns "pending" or "done".
func (s CompletionState) String() string {
	if s == Done {
		return "done"
	}
	return "pending"
}

// Toggle returns the opposite state.
func (s CompletionState) Toggle() CompletionState {
	if s == Done {
		return Pending
	}
	return Done
}

// Task represents a single task item.
type Task struct {
	ID    TaskID
	Title string
	State CompletionState
}

// IsDone reports whether the task is completed.
func (t Task) IsDone() bool {
	return t.State == Done
}

// TaskPatch holds the fields of a partial update.
// Nil fields are left unchanged on the server.
type TaskPatch struct {
	Title *string
	State *CompletionState
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.State == nil
}

// WithTitle returns a patch that sets the title.
func WithTitle(title string) TaskPatch {
	return TaskPatch{Title: &title}
}

// WithState returns a patch that sets the completion state.
func WithState(state CompletionState) TaskPatch {
	return TaskPatch{State: &state}
}

// NormalizeTitle trims surrounding whitespace from a title.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}
