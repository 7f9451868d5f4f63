package worker

import (
	"time"

	"github.com/taskbench/taskbench/internal/task"
)

// Status partitions results into successes and failures.
type Status string

const (
	// StatusSuccess marks a task whose payload completed.
	StatusSuccess Status = "success"
	// StatusFailure marks a task whose payload errored, panicked, timed
	// out, or was lost to a worker crash.
	StatusFailure Status = "failure"
)

// Failure reasons recorded on failed results.
const (
	// ReasonTaskError means the payload itself returned an error or panicked.
	ReasonTaskError = "task_error"
	// ReasonTimeout means the run deadline expired before the task resolved.
	ReasonTimeout = "timeout"
	// ReasonWorkerCrash means a process-pool worker died while the task
	// was assigned to it, or before it could be assigned at all.
	ReasonWorkerCrash = "worker_crash"
)

// Result is the outcome of exactly one task. Exactly one Result is
// produced per submitted task per run, regardless of strategy. The
// fields are plain values with JSON tags because process-pool results
// cross the child's stdout as JSON frames. Ownership transfers to the
// aggregator on emission.
type Result struct {
	TaskID     int       `json:"task_id"`
	WorkerID   int       `json:"worker_id"`
	Kind       task.Kind `json:"kind"`
	Status     Status    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns the wall-clock span between start and finish.
func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed reports whether the result carries a failure status.
func (r Result) Failed() bool { return r.Status == StatusFailure }

// Unresolved builds a failure Result for a task that never produced one:
// tasks cut off by the run deadline (ReasonTimeout) or stranded by dead
// workers (ReasonWorkerCrash). The master uses it to keep the
// N-tasks-in/N-results-out invariant on truncated runs.
func Unresolved(t task.Task, reason string, at time.Time) Result {
	return Result{
		TaskID:     t.ID,
		Kind:       t.Kind,
		Status:     StatusFailure,
		Reason:     reason,
		Error:      reason,
		StartedAt:  at,
		FinishedAt: at,
	}
}

// Crashed builds a failure Result for the task a worker held when it
// died unexpectedly.
func Crashed(t task.Task, workerID int, err error, at time.Time) Result {
	return Result{
		TaskID:     t.ID,
		WorkerID:   workerID,
		Kind:       t.Kind,
		Status:     StatusFailure,
		Reason:     ReasonWorkerCrash,
		Error:      err.Error(),
		StartedAt:  at,
		FinishedAt: at,
	}
}
