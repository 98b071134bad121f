package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the service and storage layers. Callers
// distinguish failure kinds with errors.Is/errors.As so the API layer can
// decide whether to prompt, retry, or block.
var (
	// ErrSessionConflict means the user already has an active session.
	// Never resolved silently: the caller must complete or abandon the
	// existing session first.
	ErrSessionConflict = errors.New("user already has an active session")

	// ErrNotFound means the referenced session, exercise, or user does not
	// exist, or a session is no longer active for a mutation that needs one.
	ErrNotFound = errors.New("not found")

	// ErrMissingBodyWeight means bodyweight auto-population needed a body
	// stats record the profile lacks. Recoverable: prompt for body weight.
	ErrMissingBodyWeight = errors.New("no body weight on record")
)

// ValidationError reports malformed input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a failed persistence operation. Always surfaced to the
// caller, never swallowed: a write the caller believes happened must be
// durably stored.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
