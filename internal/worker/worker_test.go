package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/taskbench/taskbench/internal/task"
)

func TestExecute_Success(t *testing.T) {
	t.Parallel()
	e := NewExecutor(3)
	res := e.Execute(context.Background(), task.Task{ID: 1, Kind: task.KindCPU, Intensity: 1})

	if res.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", res.Status, res.Error)
	}
	if res.TaskID != 1 || res.WorkerID != 3 || res.Kind != task.KindCPU {
		t.Errorf("result identity wrong: %+v", res)
	}
	if res.Reason != "" || res.Error != "" {
		t.Errorf("success result must not carry a reason or error: %+v", res)
	}
	if res.FinishedAt.Before(res.StartedAt) {
		t.Error("finished_at precedes started_at")
	}
}

func TestExecute_PayloadErrorBecomesFailureResult(t *testing.T) {
	t.Parallel()
	e := NewExecutor(1)
	res := e.Execute(context.Background(), task.Task{ID: 5, Kind: task.KindIO, Intensity: -1})

	if res.Status != StatusFailure {
		t.Fatalf("expected failure, got %s", res.Status)
	}
	if res.Reason != ReasonTaskError {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonTaskError)
	}
	if !strings.Contains(res.Error, "negative intensity") {
		t.Errorf("error should describe the cause, got %q", res.Error)
	}
}

func TestExecute_UnknownKind(t *testing.T) {
	t.Parallel()
	e := NewExecutor(1)
	res := e.Execute(context.Background(), task.Task{ID: 2, Kind: "gpu", Intensity: 1})

	if res.Status != StatusFailure || res.Reason != ReasonTaskError {
		t.Fatalf("expected task_error failure, got %+v", res)
	}
	if !strings.Contains(res.Error, "unknown task kind") {
		t.Errorf("error should mention the unknown kind, got %q", res.Error)
	}
}

func TestExecute_PanicIsRecovered(t *testing.T) {
	t.Parallel()
	panicking := task.Registry{
		task.KindCPU: func(ctx context.Context, intensity int) error {
			panic("payload exploded")
		},
	}
	e := NewExecutor(2, WithPayloads(panicking))

	res := e.Execute(context.Background(), task.Task{ID: 9, Kind: task.KindCPU, Intensity: 1})
	if res.Status != StatusFailure || res.Reason != ReasonTaskError {
		t.Fatalf("expected recovered task_error failure, got %+v", res)
	}
	if !strings.Contains(res.Error, "payload exploded") {
		t.Errorf("error should carry the panic value, got %q", res.Error)
	}
	if res.TaskID != 9 || res.WorkerID != 2 {
		t.Errorf("recovered result lost its identity: %+v", res)
	}

	// The executor must survive the panic.
	next := e.Execute(context.Background(), task.Task{ID: 10, Kind: task.KindCPU, Intensity: 1})
	if next.Status != StatusFailure {
		// The injected registry always panics, so this second call proves
		// recovery rather than success.
		t.Errorf("executor did not survive the first panic: %+v", next)
	}
}

func TestExecute_ContextExpiryIsTimeout(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	e := NewExecutor(1)
	res := e.Execute(ctx, task.Task{ID: 4, Kind: task.KindIO, Intensity: 10_000})

	if res.Status != StatusFailure {
		t.Fatalf("expected failure, got %s", res.Status)
	}
	if res.Reason != ReasonTimeout {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonTimeout)
	}
}

func TestUnresolvedAndCrashed(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tk := task.Task{ID: 11, Kind: task.KindMixed, Intensity: 2}

	unresolved := Unresolved(tk, ReasonTimeout, now)
	if unresolved.Status != StatusFailure || unresolved.Reason != ReasonTimeout {
		t.Errorf("unexpected unresolved result: %+v", unresolved)
	}
	if unresolved.TaskID != 11 || unresolved.Duration() != 0 {
		t.Errorf("unresolved result should be zero-duration for the task: %+v", unresolved)
	}

	crashed := Crashed(tk, 7, errors.New("broken pipe"), now)
	if crashed.Reason != ReasonWorkerCrash || crashed.WorkerID != 7 {
		t.Errorf("unexpected crashed result: %+v", crashed)
	}
	if !strings.Contains(crashed.Error, "broken pipe") {
		t.Errorf("crashed result should carry the pipe error, got %q", crashed.Error)
	}
}
