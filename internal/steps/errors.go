package steps

import (
	"errors"
	"fmt"
)

// ErrPrecondition indicates a step no longer fits the live document.
var ErrPrecondition = errors.New("precondition failed")

// Error is a step execution failure. Retryable reports whether resubmitting
// the step without document changes could succeed.
type Error struct {
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Retryable {
		return fmt.Sprintf("%v (retryable)", e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Permanent wraps err as a non-retryable step failure.
func Permanent(err error) *Error {
	return &Error{Retryable: false, Err: err}
}

// Transient wraps err as a retryable step failure.
func Transient(err error) *Error {
	return &Error{Retryable: true, Err: err}
}

// IsRetryable reports whether err is a retryable step failure.
func IsRetryable(err error) bool {
	var stepErr *Error
	if errors.As(err, &stepErr) {
		return stepErr.Retryable
	}
	return false
}

func preconditionf(format string, args ...any) *Error {
	return Permanent(fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...)))
}
