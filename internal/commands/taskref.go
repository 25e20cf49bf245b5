package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"tarefas/internal/exitcode"
	"tarefas/internal/service"
	"tarefas/internal/tasksync"
)

// TaskRef identifies a task on the command line.
type TaskRef struct {
	Position int            // 1-based position in the list output, 0 if ID is set
	ID       service.TaskID // server id given as @<id>
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrInvalidTaskRef indicates an argument that is neither a number nor @<id>.
	ErrInvalidTaskRef = errors.New("invalid task reference")

	// ErrOutOfRange indicates a position past the end of the list.
	ErrOutOfRange = errors.New("task number out of range")
)

// ParseTaskRef parses the first argument as a task reference:
// all digits is a position, @<id> is a server id.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}

	arg := args[0]
	if id, ok := strings.CutPrefix(arg, "@"); ok {
		if id == "" {
			return TaskRef{}, fmt.Errorf("%w: %s", ErrInvalidTaskRef, arg)
		}
		return TaskRef{ID: service.TaskID(id)}, nil
	}

	if !isAllDigits(arg) {
		return TaskRef{}, fmt.Errorf("%w: %s", ErrInvalidTaskRef, arg)
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return TaskRef{}, fmt.Errorf("%w: %s", ErrOutOfRange, arg)
	}
	return TaskRef{Position: n}, nil
}

func (r TaskRef) String() string {
	if r.ID != "" {
		return "@" + string(r.ID)
	}
	return strconv.Itoa(r.Position)
}

// Resolve finds the referenced task in the client's current snapshot.
func (r TaskRef) Resolve(client *tasksync.Client) (service.Task, error) {
	if r.ID != "" {
		task, ok := client.Find(r.ID)
		if !ok {
			return service.Task{}, fmt.Errorf("%w: %s", service.ErrNotFound, r)
		}
		return task, nil
	}

	tasks := client.Tasks()
	if r.Position > len(tasks) {
		return service.Task{}, fmt.Errorf("%w: %d", ErrOutOfRange, r.Position)
	}
	return tasks[r.Position-1], nil
}

// withTask refreshes, resolves the reference in args[0] and hands the
// task to fn.
func withTask(ctx context.Context, client *tasksync.Client, args []string, errOut io.Writer, fn func(service.Task) error) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return reportError(errOut, err)
	}
	if err := client.Refresh(ctx); err != nil {
		return reportError(errOut, err)
	}
	task, err := ref.Resolve(client)
	if err != nil {
		return reportError(errOut, err)
	}
	if err := fn(task); err != nil {
		return reportError(errOut, err)
	}
	return exitcode.Success
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
