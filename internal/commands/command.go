// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"tarefas/internal/config"
	"tarefas/internal/tasksync"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsBackend returns true if the command talks to the server.
	// help, version and config return false.
	NeedsBackend() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command and returns the exit code.
	// client is nil if NeedsBackend() returns false.
	// in is read by commands that ask for confirmation.
	Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, in io.Reader, out, errOut io.Writer) int
}
