// Package devserver is a reference implementation of the /tarefas REST
// resource for local development and end-to-end tests.
package devserver

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"tarefas/internal/service"
	"tarefas/internal/wire"
)

// Store persists the task collection on the server side.
// Unknown ids yield service.ErrNotFound.
type Store interface {
	List(ctx context.Context) ([]service.Task, error)
	Get(ctx context.Context, id service.TaskID) (service.Task, error)
	Create(ctx context.Context, title string, state service.CompletionState) (service.Task, error)
	Update(ctx context.Context, id service.TaskID, f wire.Fields) (service.Task, error)
	Delete(ctx context.Context, id service.TaskID) error
}

// IDFunc derives the public id of a new task from its insertion sequence.
type IDFunc func(seq int64) service.TaskID

// SequentialIDs uses the insertion sequence itself, as the flag dialect's
// SQLite backend does.
func SequentialIDs(seq int64) service.TaskID {
	return service.TaskID(strconv.FormatInt(seq, 10))
}

// RandomIDs assigns opaque string ids, as the status dialect's document
// store does.
func RandomIDs(int64) service.TaskID {
	return service.TaskID(uuid.NewString())
}

// IDsFor returns the id scheme that matches a dialect.
func IDsFor(d wire.Dialect) IDFunc {
	if d == wire.Flag {
		return SequentialIDs
	}
	return RandomIDs
}
