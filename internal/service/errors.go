package service

import "errors"

// Error taxonomy shared by backends and the sync client.
// Backends wrap these with context; callers match with errors.Is.
var (
	// ErrValidation is returned for input rejected before any network call.
	ErrValidation = errors.New("invalid input")

	// ErrConnectivity is returned when a request did not complete:
	// network unreachable, non-2xx status, or a malformed response body.
	ErrConnectivity = errors.New("could not reach server")

	// ErrNotFound is returned when the targeted task does not exist.
	ErrNotFound = errors.New("task not found")
)
