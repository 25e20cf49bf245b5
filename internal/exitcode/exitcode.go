// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, bad ref, not found, aborted).
	UserError = 1

	// ConfigError indicates a missing or invalid configuration.
	ConfigError = 2

	// BackendError indicates a server or network error.
	BackendError = 3
)
