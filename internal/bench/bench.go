// Package bench runs the comprehensive comparison sweep: every
// execution model against a grid of task counts and worker counts,
// collected into a single JSON-serializable report.
package bench

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	apperrors "github.com/taskbench/taskbench/internal/errors"
	"github.com/taskbench/taskbench/internal/logging"
	"github.com/taskbench/taskbench/internal/master"
	"github.com/taskbench/taskbench/internal/summary"
	"github.com/taskbench/taskbench/internal/task"
)

// DefaultTaskCounts is the sweep's task-count axis.
func DefaultTaskCounts() []int { return []int{10, 50, 100} }

// DefaultWorkerCounts derives the worker-count axis from the machine:
// 1, half the cores, all cores, twice the cores, deduplicated.
func DefaultWorkerCounts() []int {
	cpus := runtime.NumCPU()
	candidates := []int{1, cpus / 2, cpus, cpus * 2}
	seen := make(map[int]struct{}, len(candidates))
	var counts []int
	for _, c := range candidates {
		if c < 1 {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		counts = append(counts, c)
	}
	return counts
}

// Runner executes one configured run. The sweep uses the real master
// factory; tests substitute a stub to keep the grid cheap.
type Runner func(ctx context.Context, cfg master.Config) (summary.RunSummary, error)

func defaultRunner(ctx context.Context, cfg master.Config) (summary.RunSummary, error) {
	m, err := master.New(cfg)
	if err != nil {
		return summary.RunSummary{}, err
	}
	defer m.Shutdown()
	return m.Run(ctx)
}

// Options parameterizes the sweep. Zero-value axes fall back to the
// defaults; a nil Runner uses the real master.
type Options struct {
	TaskCounts     []int
	WorkerCounts   []int
	Mix            task.Mix
	Seed           int64
	Timeout        time.Duration
	SampleInterval time.Duration
	Logger         logging.Logger
	Runner         Runner
}

// Report is the sweep outcome, keyed by model name the way consumers
// plot it: one run per task count for the single model, one per task
// count and worker count for the pooled models.
type Report struct {
	GeneratedAt  time.Time                      `json:"generated_at"`
	TaskCounts   []int                          `json:"task_counts"`
	WorkerCounts []int                          `json:"worker_counts"`
	Runs         map[string][]summary.RunSummary `json:"runs"`
}

// Run executes the full sweep. Cancellation between runs stops the
// sweep and returns the report collected so far alongside ctx's error;
// a run that was already started finishes truncated on its own.
func Run(ctx context.Context, opts Options) (Report, error) {
	if len(opts.TaskCounts) == 0 {
		opts.TaskCounts = DefaultTaskCounts()
	}
	if len(opts.WorkerCounts) == 0 {
		opts.WorkerCounts = DefaultWorkerCounts()
	}
	if opts.Mix == (task.Mix{}) {
		opts.Mix = task.DefaultMix()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	run := opts.Runner
	if run == nil {
		run = defaultRunner
	}

	report := Report{
		GeneratedAt:  time.Now(),
		TaskCounts:   opts.TaskCounts,
		WorkerCounts: opts.WorkerCounts,
		Runs:         make(map[string][]summary.RunSummary, len(master.Models())),
	}

	for _, taskCount := range opts.TaskCounts {
		opts.Logger.Info("benchmarking task count", logging.Int("tasks", taskCount))
		tasks, err := task.Generate(taskCount, opts.Mix, opts.Seed)
		if err != nil {
			return report, err
		}

		for _, model := range master.Models() {
			workerCounts := opts.WorkerCounts
			if model == master.ModelSingle {
				workerCounts = []int{1}
			}
			for _, workers := range workerCounts {
				if err := ctx.Err(); err != nil {
					return report, err
				}
				opts.Logger.Info("benchmarking",
					logging.String("model", string(model)),
					logging.Int("workers", workers),
					logging.Int("tasks", taskCount))

				s, err := run(ctx, master.Config{
					Model:          model,
					Workers:        workers,
					Tasks:          tasks,
					Timeout:        opts.Timeout,
					SampleInterval: opts.SampleInterval,
					Logger:         opts.Logger,
				})
				if err != nil {
					return report, apperrors.WrapError(err, "benchmark run %s/%d workers/%d tasks", model, workers, taskCount)
				}
				report.Runs[string(model)] = append(report.Runs[string(model)], s)
			}
		}
	}
	return report, nil
}

// WriteReport serializes the report as indented JSON.
func WriteReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteReportFile writes the report to path, creating parent
// directories as needed.
func WriteReportFile(path string, r Report) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.WrapError(err, "creating report directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.WrapError(err, "creating report file")
	}
	defer f.Close()
	return WriteReport(f, r)
}
