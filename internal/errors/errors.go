package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the run deadline was exceeded.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as an invalid
// worker count or an unknown execution model. It indicates that the run
// cannot start due to incorrect input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// TaskExecutionError encapsulates a payload failure while preserving the
// original cause. It is recovered at the worker boundary into a failure
// result and is never fatal to the run.
type TaskExecutionError struct {
	// TaskID identifies the task whose payload failed.
	TaskID int
	// Cause is the underlying error raised by the payload.
	Cause error
}

// Error returns a message naming the task and the underlying cause.
func (e TaskExecutionError) Error() string {
	return fmt.Sprintf("task %d failed: %v", e.TaskID, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e TaskExecutionError) Unwrap() error { return e.Cause }

// WorkerCrashError reports that a process-pool worker died unexpectedly.
// The master converts the worker's in-flight task into a failure result
// carrying this error rather than hanging on the dead worker.
type WorkerCrashError struct {
	// WorkerID identifies the crashed worker.
	WorkerID int
	// Cause is the pipe or exit error observed by the master.
	Cause error
}

// Error returns a message describing the crash.
func (e WorkerCrashError) Error() string {
	return fmt.Sprintf("worker %d crashed: %v", e.WorkerID, e.Cause)
}

// Unwrap returns the underlying pipe or exit error.
func (e WorkerCrashError) Unwrap() error { return e.Cause }

// TimeoutError represents a run-level deadline expiry. It captures the
// operation name and the duration limit that was exceeded. Expiry triggers
// graceful truncation of the run, not a fatal error.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline
// exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
