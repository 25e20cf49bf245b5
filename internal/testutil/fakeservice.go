// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"tarefas/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// Ids are assigned sequentially starting at 1.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int
	calls  map[string]int

	// Error injection for testing
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// ListHook runs after ListTasks has taken its snapshot and before it
	// returns. Tests use it to hold a response back.
	ListHook func(ctx context.Context)
}

// NewFakeService creates a new, empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		calls:  make(map[string]int),
	}
}

// AddTask adds a task directly, bypassing CreateTask, and returns its id.
func (f *FakeService) AddTask(title string, state service.CompletionState) service.TaskID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.assignID()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, State: state})
	return id
}

// RemoveTask drops a task without counting a call, simulating another client.
func (f *FakeService) RemoveTask(id service.TaskID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return
		}
	}
}

// Stored returns a copy of the server-side tasks.
func (f *FakeService) Stored() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Calls returns how many times the named method was invoked.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	f.calls["ListTasks"]++
	err := f.ListTasksErr
	snapshot := make([]service.Task, len(f.tasks))
	copy(snapshot, f.tasks)
	hook := f.ListHook
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if hook != nil {
		hook(ctx)
	}
	return snapshot, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, title string, state service.CompletionState) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateTask"]++
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}

	task := service.Task{ID: f.assignID(), Title: title, State: state}
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id service.TaskID, patch service.TaskPatch) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateTask"]++
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}

	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if patch.Title != nil {
			f.tasks[i].Title = *patch.Title
		}
		if patch.State != nil {
			f.tasks[i].State = *patch.State
		}
		return f.tasks[i], nil
	}
	return service.Task{}, fmt.Errorf("%w: %s", service.ErrNotFound, id)
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id service.TaskID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteTask"]++
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", service.ErrNotFound, id)
}

func (f *FakeService) assignID() service.TaskID {
	id := service.TaskID(strconv.Itoa(f.nextID))
	f.nextID++
	return id
}
