package apperrors

import "errors"

// Sentinel errors for the case lifecycle. Call sites wrap them with
// fmt.Errorf("context: %w", Err...) and handlers map them to HTTP status.
var (
	// ErrValidation: missing or malformed caller input. Not retryable as-is.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound: referenced case or notification does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: transition not allowed from the case's current status.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable: an external dependency was unreachable or timed out
	// during a primary synchronous call. Retryable by the caller.
	ErrUnavailable = errors.New("service unavailable")

	// ErrMismatch: verification ran and did not match. An expected
	// outcome, distinct from failure.
	ErrMismatch = errors.New("face mismatch")
)
