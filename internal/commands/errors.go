package commands

import (
	"errors"
	"fmt"
	"io"

	"tarefas/internal/exitcode"
	"tarefas/internal/service"
)

// errAborted is returned when the user declines a confirmation prompt.
var errAborted = errors.New("aborted")

// reportError prints err and returns the matching exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, ErrTaskRefRequired),
		errors.Is(err, ErrInvalidTaskRef),
		errors.Is(err, ErrOutOfRange),
		errors.Is(err, errAborted):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
