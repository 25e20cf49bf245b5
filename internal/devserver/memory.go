package devserver

import (
	"context"
	"fmt"
	"sync"

	"tarefas/internal/service"
	"tarefas/internal/wire"
)

// MemoryStore keeps tasks in insertion order in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks []service.Task
	seq   int64
	ids   IDFunc
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(ids IDFunc) *MemoryStore {
	return &MemoryStore{ids: ids}
}

func (s *MemoryStore) List(ctx context.Context) ([]service.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id service.TaskID) (service.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return service.Task{}, fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	return s.tasks[i], nil
}

func (s *MemoryStore) Create(ctx context.Context, title string, state service.CompletionState) (service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task := service.Task{ID: s.ids(s.seq), Title: title, State: state}
	s.tasks = append(s.tasks, task)
	return task, nil
}

func (s *MemoryStore) Update(ctx context.Context, id service.TaskID, f wire.Fields) (service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return service.Task{}, fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	if f.Title != nil {
		s.tasks[i].Title = *f.Title
	}
	if f.State != nil {
		s.tasks[i].State = *f.State
	}
	return s.tasks[i], nil
}

func (s *MemoryStore) Delete(ctx context.Context, id service.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

func (s *MemoryStore) index(id service.TaskID) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
