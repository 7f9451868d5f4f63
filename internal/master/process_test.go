package master

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/taskbench/taskbench/internal/summary"
	"github.com/taskbench/taskbench/internal/task"
	"github.com/taskbench/taskbench/internal/worker"
	"github.com/taskbench/taskbench/internal/workerproc"
)

// TestMain lets the test binary serve as its own pool worker: the
// multiprocess master re-execs os.Executable(), which during tests is
// this binary. A process spawned with the worker environment variable
// runs the worker loop instead of the test suite.
func TestMain(m *testing.M) {
	if workerproc.IsChild() {
		os.Exit(workerproc.Run(os.Stdin, os.Stdout, nil))
	}
	os.Exit(m.Run())
}

// The multiprocess tests below mutate the package-level childCommand
// hook, so none of them run in parallel.

func TestRun_MultiprocessExecutesBatch(t *testing.T) {
	tasks := task.Uniform(5, task.KindIO, 1)
	tasks[2].Intensity = -1 // rejected by every payload

	m, err := New(Config{Model: ModelMultiprocess, Workers: 2, Tasks: tasks})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	requireExactCoverage(t, tasks, s)
	if s.SuccessCount != 4 || s.FailureCount != 1 {
		t.Fatalf("counts = %d/%d, want 4/1", s.SuccessCount, s.FailureCount)
	}
	for _, res := range s.Results {
		if res.TaskID == tasks[2].ID && res.Reason != worker.ReasonTaskError {
			t.Errorf("injected failure reported as %+v", res)
		}
	}
	if s.Truncated {
		t.Error("run must not be truncated")
	}
}

func TestRun_MultiprocessEmptyBatch(t *testing.T) {
	m, err := New(Config{Model: ModelMultiprocess, Workers: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.TaskCount != 0 || s.SuccessCount != 0 || s.FailureCount != 0 {
		t.Errorf("empty batch summary: %+v", s)
	}
}

func TestRun_MultiprocessWorkerCrash(t *testing.T) {
	orig := childCommand
	t.Cleanup(func() { childCommand = orig })
	// Every worker dies before reading a single frame.
	childCommand = func(ctx context.Context, workerID int) (*exec.Cmd, error) {
		return exec.CommandContext(ctx, "false"), nil
	}

	tasks := task.Uniform(6, task.KindIO, 1)
	m, err := New(Config{Model: ModelMultiprocess, Workers: 2, Tasks: tasks})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan struct{})
	var s summary.RunSummary
	go func() {
		defer close(done)
		s, err = m.Run(context.Background())
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("run hung after worker crash")
	}
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	requireExactCoverage(t, tasks, s)
	if s.SuccessCount != 0 || s.FailureCount != len(tasks) {
		t.Fatalf("counts = %d/%d, want 0/%d", s.SuccessCount, s.FailureCount, len(tasks))
	}
	for _, res := range s.Results {
		if res.Reason != worker.ReasonWorkerCrash {
			t.Errorf("task %d reported %q, want %q", res.TaskID, res.Reason, worker.ReasonWorkerCrash)
		}
	}
}

func TestRun_MultiprocessSurvivorsFinishTheBatch(t *testing.T) {
	orig := childCommand
	t.Cleanup(func() { childCommand = orig })
	// Worker 1 dies immediately, worker 2 behaves normally. Tasks queued
	// behind the dead worker must be picked up by the survivor.
	childCommand = func(ctx context.Context, workerID int) (*exec.Cmd, error) {
		if workerID == 1 {
			return exec.CommandContext(ctx, "false"), nil
		}
		return orig(ctx, workerID)
	}

	tasks := task.Uniform(6, task.KindIO, 1)
	m, err := New(Config{Model: ModelMultiprocess, Workers: 2, Tasks: tasks})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	requireExactCoverage(t, tasks, s)
	crashes := 0
	for _, res := range s.Results {
		if res.Reason == worker.ReasonWorkerCrash {
			crashes++
		}
	}
	if crashes != 1 {
		t.Errorf("crash failures = %d, want exactly the in-flight task", crashes)
	}
	if s.SuccessCount != len(tasks)-1 {
		t.Errorf("SuccessCount = %d, want %d", s.SuccessCount, len(tasks)-1)
	}
}

func TestRun_MultiprocessNoWorkerStarts(t *testing.T) {
	orig := childCommand
	t.Cleanup(func() { childCommand = orig })
	childCommand = func(ctx context.Context, workerID int) (*exec.Cmd, error) {
		return exec.CommandContext(ctx, "/nonexistent/taskbench-worker"), nil
	}

	m, err := New(Config{Model: ModelMultiprocess, Workers: 2, Tasks: task.Uniform(3, task.KindIO, 1)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.Run(context.Background()); err == nil {
		t.Fatal("Run should fail when no worker process starts")
	}
}

func TestRun_MultiprocessDeadlineTruncates(t *testing.T) {
	// Each task sleeps 400ms; one worker cannot finish 8 of them in 150ms.
	tasks := task.Uniform(8, task.KindIO, 200)

	m, err := New(Config{
		Model:   ModelMultiprocess,
		Workers: 1,
		Tasks:   tasks,
		Timeout: 150 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Now()
	s, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("truncated run took %v", elapsed)
	}

	requireExactCoverage(t, tasks, s)
	if !s.Truncated {
		t.Error("Truncated should be true")
	}
	timeouts := 0
	for _, res := range s.Results {
		if res.Failed() && res.Reason == worker.ReasonTimeout {
			timeouts++
		}
	}
	if timeouts == 0 {
		t.Error("expected unresolved tasks marked with the timeout reason")
	}
}
