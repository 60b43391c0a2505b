package interview

import (
	"errors"
	"fmt"
)

// ValidationError means the caller supplied bad or insufficient input.
// The session returns to the phase it came from; the user must supply
// different input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// InvalidTopicsError means document analysis produced no usable topics.
type InvalidTopicsError struct {
	Count int
}

func (e *InvalidTopicsError) Error() string {
	return fmt.Sprintf("analysis yielded %d topics, need at least 1", e.Count)
}

// GenerationError wraps a failed or timed-out external generation
// request. Transient network failures surface identically. Retryable
// except during first-question preparation, where it aborts the topic.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// InvariantViolation is a programmer error, e.g. advancing with no
// active topic. Never silently swallowed in tests.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string { return "invariant violation: " + e.Msg }

// IsValidation reports whether err is a ValidationError or
// InvalidTopicsError.
func IsValidation(err error) bool {
	var ve *ValidationError
	var te *InvalidTopicsError
	return errors.As(err, &ve) || errors.As(err, &te)
}

// IsGeneration reports whether err is a recoverable generation failure.
func IsGeneration(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
