// Package tasksync keeps an in-memory snapshot of the task collection in
// step with the server.
//
// The snapshot is never edited locally. Every successful write is followed
// by a full refresh, and the snapshot is always the newest accepted list
// response. Refreshes are numbered when issued; a response that arrives
// after a newer one has been applied is discarded, so overlapping calls
// cannot roll the snapshot back.
package tasksync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tarefas/internal/service"
)

// Snapshot is what a rendering layer shows: the tasks and a spinner flag.
type Snapshot struct {
	Tasks   []service.Task
	Loading bool
}

// Client synchronizes one task collection with a service.Service.
// It is safe for concurrent use.
type Client struct {
	svc service.Service
	log *slog.Logger

	mu       sync.Mutex
	tasks    []service.Task
	inflight int    // refreshes issued but not returned
	issued   uint64 // sequence number of the last issued refresh
	applied  uint64 // sequence number of the snapshot in tasks
	subs     []subscription
	nextSub  int
	version  uint64 // bumped on every change subscribers can see

	// deliverMu orders deliveries; delivered is the version last sent.
	deliverMu sync.Mutex
	delivered uint64
}

type subscription struct {
	id int
	fn func(Snapshot)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client with an empty snapshot.
func New(svc service.Service, opts ...Option) *Client {
	c := &Client{
		svc:   svc,
		log:   slog.New(slog.DiscardHandler),
		tasks: []service.Task{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tasks returns a copy of the current snapshot, in server order.
func (c *Client) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyTasks()
}

// IsLoading reports whether any refresh is in flight.
func (c *Client) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Find looks a task up in the current snapshot.
func (c *Client) Find(id service.TaskID) (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Subscribe registers fn to receive snapshot changes, including loading
// flag changes. fn may be called from several goroutines, one call at a
// time, and never sees an older snapshot after a newer one; intermediate
// snapshots may be skipped, but the latest state is always delivered.
// fn must not call Refresh or any write method. The returned func
// removes the subscription.
func (c *Client) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscription{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Refresh fetches the full collection and replaces the snapshot.
// On failure the previous snapshot is kept and a connectivity error is
// returned. The loading flag is cleared on every path out.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.inflight++
	c.version++
	c.mu.Unlock()
	c.notify()

	tasks, err := c.svc.ListTasks(ctx)

	c.mu.Lock()
	c.inflight--
	stale := seq < c.applied
	if err == nil && !stale {
		c.tasks = make([]service.Task, len(tasks))
		copy(c.tasks, tasks)
		c.applied = seq
	}
	c.version++
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.log.Debug("refresh failed", "seq", seq, "err", err)
		// Only ErrConnectivity is wrapped: a 404 on the collection is
		// not a missing task.
		if errors.Is(err, service.ErrConnectivity) && !errors.Is(err, service.ErrNotFound) {
			return fmt.Errorf("refresh: %w", err)
		}
		return fmt.Errorf("refresh: %w: %v", service.ErrConnectivity, err)
	}
	if stale {
		c.log.Debug("discarded out-of-order refresh", "seq", seq)
		return nil
	}
	c.log.Debug("refreshed", "seq", seq, "tasks", len(tasks))
	return nil
}

// Create adds a pending task with the trimmed title, then refreshes.
// An empty title fails with service.ErrValidation and makes no call.
func (c *Client) Create(ctx context.Context, title string) error {
	title = service.NormalizeTitle(title)
	if title == "" {
		return fmt.Errorf("%w: title required", service.ErrValidation)
	}

	task, err := c.svc.CreateTask(ctx, title, service.Pending)
	if err != nil {
		return wrapError("create", err)
	}
	c.log.Debug("created", "id", task.ID)
	return c.Refresh(ctx)
}

// Update applies patch to the task with id, then refreshes.
// The id must be in the current snapshot; otherwise service.ErrNotFound
// is returned without a network call.
func (c *Client) Update(ctx context.Context, id service.TaskID, patch service.TaskPatch) error {
	if patch.Title != nil {
		title := service.NormalizeTitle(*patch.Title)
		if title == "" {
			return fmt.Errorf("%w: title required", service.ErrValidation)
		}
		patch.Title = &title
	}
	if patch.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", service.ErrValidation)
	}
	if _, ok := c.Find(id); !ok {
		return fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}

	if _, err := c.svc.UpdateTask(ctx, id, patch); err != nil {
		return wrapError("update", err)
	}
	return c.Refresh(ctx)
}

// Delete removes the task with id, then refreshes.
// Asking the user for confirmation is the caller's job.
func (c *Client) Delete(ctx context.Context, id service.TaskID) error {
	if _, ok := c.Find(id); !ok {
		return fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}

	if err := c.svc.DeleteTask(ctx, id); err != nil {
		return wrapError("delete", err)
	}
	return c.Refresh(ctx)
}

// ToggleCompletion flips the completion state recorded in the snapshot.
func (c *Client) ToggleCompletion(ctx context.Context, id service.TaskID) error {
	task, ok := c.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	return c.Update(ctx, id, service.WithState(task.State.Toggle()))
}

func (c *Client) copyTasks() []service.Task {
	out := make([]service.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// notify sends the current state to subscribers. Deliveries are
// serialized and each one re-reads the state, so a slow subscriber can
// delay but never reorder what others see.
func (c *Client) notify() {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	if len(c.subs) == 0 || c.version <= c.delivered {
		c.mu.Unlock()
		return
	}
	c.delivered = c.version
	snap := Snapshot{Tasks: c.copyTasks(), Loading: c.inflight > 0}
	subs := make([]subscription, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
}

// wrapError keeps not-found and connectivity errors as they are and
// classifies everything else as a connectivity failure.
func wrapError(op string, err error) error {
	if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrConnectivity) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, service.ErrConnectivity, err)
}
