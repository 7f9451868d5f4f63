// Package worker executes single tasks and converts every possible
// payload outcome, including panics, into exactly one Result. A failing
// task never terminates its worker or the run.
package worker

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/taskbench/taskbench/internal/errors"
	"github.com/taskbench/taskbench/internal/logging"
	"github.com/taskbench/taskbench/internal/task"
)

// Executor runs tasks for one worker identity. It is pure with respect
// to the Task: the only shared state it touches is the queue its owner
// pulls from.
type Executor struct {
	id       int
	payloads task.Registry
	logger   logging.Logger
}

// Option configures an Executor during construction.
type Option func(*Executor)

// WithPayloads overrides the payload registry. Tests use this to inject
// failing or instrumented payloads.
func WithPayloads(r task.Registry) Option {
	return func(e *Executor) { e.payloads = r }
}

// WithLogger sets the executor's logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an Executor for the given worker ID with the
// default payload registry.
func NewExecutor(id int, opts ...Option) *Executor {
	e := &Executor{
		id:       id,
		payloads: task.DefaultPayloads(),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID returns the worker identity stamped on emitted results.
func (e *Executor) ID() int { return e.id }

// Execute runs one task and returns its Result. Errors and panics raised
// by the payload are caught here and turned into failure results; a
// context expiry is classified as a timeout so truncated runs report a
// consistent reason.
func (e *Executor) Execute(ctx context.Context, t task.Task) (res Result) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("payload panicked", fmt.Errorf("%v", r), logging.Int("task", t.ID))
			res = Result{
				TaskID:     t.ID,
				WorkerID:   e.id,
				Kind:       t.Kind,
				Status:     StatusFailure,
				Reason:     ReasonTaskError,
				Error:      fmt.Sprintf("panic: %v", r),
				StartedAt:  started,
				FinishedAt: time.Now(),
			}
		}
	}()

	payload, ok := e.payloads[t.Kind]
	if !ok {
		return e.failure(t, started, apperrors.TaskExecutionError{
			TaskID: t.ID,
			Cause:  fmt.Errorf("unknown task kind %q", t.Kind),
		})
	}

	e.logger.Debug("executing task", logging.Int("task", t.ID), logging.String("kind", string(t.Kind)))
	if err := payload(ctx, t.Intensity); err != nil {
		return e.failure(t, started, err)
	}

	return Result{
		TaskID:     t.ID,
		WorkerID:   e.id,
		Kind:       t.Kind,
		Status:     StatusSuccess,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
}

// failure builds a failure Result for err, classifying context expiry
// as a timeout.
func (e *Executor) failure(t task.Task, started time.Time, err error) Result {
	reason := ReasonTaskError
	if apperrors.IsContextError(err) {
		reason = ReasonTimeout
	}
	e.logger.Error("task failed", err, logging.Int("task", t.ID), logging.String("reason", reason))
	return Result{
		TaskID:     t.ID,
		WorkerID:   e.id,
		Kind:       t.Kind,
		Status:     StatusFailure,
		Reason:     reason,
		Error:      err.Error(),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
}
