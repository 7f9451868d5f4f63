// Package master owns the task and result queues for one run and drives
// the configured number of workers to completion under one of three
// interchangeable execution strategies: sequential, thread-pool
// (goroutines) and process-pool (re-exec'd OS processes). All three
// honor the same contract: N submitted tasks yield exactly N results,
// each task ID appearing exactly once, regardless of worker count,
// failures, crashes or deadline expiry.
package master

import (
	"context"
	"time"

	apperrors "github.com/taskbench/taskbench/internal/errors"
	"github.com/taskbench/taskbench/internal/logging"
	"github.com/taskbench/taskbench/internal/metrics"
	"github.com/taskbench/taskbench/internal/summary"
	"github.com/taskbench/taskbench/internal/task"
	"github.com/taskbench/taskbench/internal/worker"
)

// Model selects the execution strategy.
type Model string

const (
	// ModelSingle processes the batch sequentially in the calling
	// goroutine. The performance baseline.
	ModelSingle Model = "single"
	// ModelThreaded processes the batch with a pool of goroutines
	// sharing the task and result queues.
	ModelThreaded Model = "threaded"
	// ModelMultiprocess processes the batch with isolated child
	// processes; tasks and results cross the boundary as JSON frames.
	ModelMultiprocess Model = "multiprocess"
)

// Models lists the supported execution strategies.
func Models() []Model { return []Model{ModelSingle, ModelThreaded, ModelMultiprocess} }

// ParseModel validates a model name from the configuration surface.
func ParseModel(s string) (Model, error) {
	m := Model(s)
	switch m {
	case ModelSingle, ModelThreaded, ModelMultiprocess:
		return m, nil
	}
	return "", apperrors.NewConfigError("unknown model %q (want single, threaded or multiprocess)", s)
}

// Config describes one run. Logger and Metrics are per-run collaborators
// passed explicitly to workers and the monitor; nil values fall back to
// no-op implementations.
type Config struct {
	Model          Model
	Workers        int
	Tasks          []task.Task
	// Timeout is the optional run-level deadline. Zero means no deadline.
	Timeout        time.Duration
	SampleInterval time.Duration
	Logger         logging.Logger
	Metrics        *metrics.Metrics
	// Payloads overrides the task payload registry. Tests inject failing
	// or instrumented payloads here; nil selects the defaults. The
	// process-pool children always run the default registry.
	Payloads task.Registry
}

// Master is the strategy-polymorphic dispatcher: one contract, three
// execution substrates.
type Master interface {
	// Run blocks until every submitted task is accounted for, the
	// run-level deadline expires, or ctx is canceled. On expiry the run
	// is truncated gracefully: unresolved tasks are reported as
	// failures, never dropped. Run releases worker resources on all
	// exit paths.
	Run(ctx context.Context) (summary.RunSummary, error)
	// Shutdown releases worker resources. It is idempotent and safe to
	// call after Run has already cleaned up.
	Shutdown()
}

// New validates cfg and constructs the master for its model.
func New(cfg Config) (Master, error) {
	if _, err := ParseModel(string(cfg.Model)); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		return nil, apperrors.NewConfigError("worker count must be >= 1, got %d", cfg.Workers)
	}
	seen := make(map[int]struct{}, len(cfg.Tasks))
	for _, t := range cfg.Tasks {
		if _, dup := seen[t.ID]; dup {
			return nil, apperrors.NewConfigError("duplicate task id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Payloads == nil {
		cfg.Payloads = task.DefaultPayloads()
	}

	switch cfg.Model {
	case ModelSingle:
		return newSequential(cfg), nil
	case ModelThreaded:
		return newThreaded(cfg), nil
	default:
		return newProcessPool(cfg), nil
	}
}

// runDeadline derives the run context from the optional timeout.
func runDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// reconcile guarantees the one-result-per-task invariant. Tasks missing
// from results get a synthetic failure: reason timeout when the run
// context expired, reason worker_crash otherwise (the only other way to
// lose a task is a dead worker). Returns the completed result set and
// whether the run was truncated.
func reconcile(ctx context.Context, tasks []task.Task, results []worker.Result) ([]worker.Result, bool) {
	resolved := make(map[int]struct{}, len(results))
	for _, res := range results {
		resolved[res.TaskID] = struct{}{}
	}

	truncated := ctx.Err() != nil
	reason := worker.ReasonWorkerCrash
	if truncated {
		reason = worker.ReasonTimeout
	}

	now := time.Now()
	for _, t := range tasks {
		if _, ok := resolved[t.ID]; ok {
			continue
		}
		results = append(results, worker.Unresolved(t, reason, now))
	}
	return results, truncated
}

// contextReason picks the failure reason for a task lost while ctx may
// have expired: deadline or cancellation reads as timeout, anything else
// as a crash.
func contextReason(ctx context.Context, cause error) string {
	if ctx.Err() != nil || apperrors.IsContextError(cause) {
		return worker.ReasonTimeout
	}
	return worker.ReasonWorkerCrash
}

// drain empties a closed result channel into a slice.
func drain(ch <-chan worker.Result, into []worker.Result) []worker.Result {
	for res := range ch {
		into = append(into, res)
	}
	return into
}
