package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every service. Callers classify with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrDependencyTimeout   = errors.New("dependency timed out")
	ErrPartialIndexFailure = errors.New("vector index write failed")
	ErrAnalysisFailure     = errors.New("analysis produced unusable output")
	ErrAnalysisInProgress  = errors.New("analysis already in progress")
	ErrBackfillRunning     = errors.New("backfill already running")
)

// ValidationError describes malformed input at the ingestion or query boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// TimeoutError wraps a dependency that exceeded its budget. It is retryable.
type TimeoutError struct {
	Dependency string
	Err        error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out: %v", e.Dependency, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool {
	return target == ErrDependencyTimeout
}

func Timeout(dependency string, err error) error {
	return &TimeoutError{Dependency: dependency, Err: err}
}

// Retryable reports whether err is worth retrying unchanged.
func Retryable(err error) bool {
	return errors.Is(err, ErrDependencyTimeout) || errors.Is(err, ErrAnalysisInProgress)
}
