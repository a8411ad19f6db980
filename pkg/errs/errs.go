// Package errs defines the domain error taxonomy. Services return these
// sentinels (possibly wrapped); the HTTP layer maps them to status codes.
// Anything that is not one of the sentinels is treated as an internal
// store failure.
package errs

import "errors"

var (
	// ErrNotFound covers both a missing entity and a caller who is not
	// authorized to see it. The two cases are deliberately
	// indistinguishable so responses do not leak existence.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks rejected input: empty content, missing
	// coordinates, unknown participant.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict marks a duplicate where one was not allowed.
	ErrConflict = errors.New("conflict")
)
