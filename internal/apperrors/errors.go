// Package apperrors defines the error taxonomy shared across the cart engine.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoEligibleProvider indicates the resolved candidate-provider set is
	// empty at submission time.
	ErrNoEligibleProvider = errors.New("no eligible provider for the selected services")

	// ErrSubmissionInFlight guards against concurrent double submission and
	// against mutating the cart while a submission is pending.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
)

// ValidationError indicates a submission precondition failed. Field names the
// specific missing input so the caller can surface it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FeedFetchError indicates a periodic feed refresh failed. Recovered silently
// by keeping the last-good catalog and retrying on the next tick.
type FeedFetchError struct {
	Feed string
	Err  error
}

func (e *FeedFetchError) Error() string {
	return fmt.Sprintf("fetch %s feed: %v", e.Feed, e.Err)
}

func (e *FeedFetchError) Unwrap() error { return e.Err }

// CorruptRecordError indicates a stored cart blob failed to parse. Recovered
// by starting the session with a fresh cart.
type CorruptRecordError struct {
	Key string
	Err error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt cart record %s: %v", e.Key, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }

// SubmissionError wraps a rejection from the external submission
// collaborator. The underlying error is surfaced to the user verbatim.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission rejected: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
