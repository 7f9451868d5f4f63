package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/taskbench/taskbench/internal/errors"
	"github.com/taskbench/taskbench/internal/summary"
)

func TestNew_ParsesArguments(t *testing.T) {
	t.Parallel()
	a, err := New([]string{"taskbench", "-model", "threaded", "-workers", "2", "-tasks", "5"}, io.Discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Config.Model != "threaded" || a.Config.Workers != 2 || a.Config.Tasks != 5 {
		t.Errorf("unexpected config: %+v", a.Config)
	}
	if a.Logger == nil {
		t.Error("New should install a logger")
	}
}

func TestNew_ConfigError(t *testing.T) {
	t.Parallel()
	_, err := New([]string{"taskbench", "-model", "forked"}, io.Discard)
	if !IsConfigError(err) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestNew_HelpError(t *testing.T) {
	t.Parallel()
	_, err := New([]string{"taskbench", "-h"}, io.Discard)
	if !IsHelpError(err) {
		t.Errorf("expected help error, got %v", err)
	}
}

func TestVersionFlag(t *testing.T) {
	t.Parallel()
	if !HasVersionFlag([]string{"--version"}) || !HasVersionFlag([]string{"-version"}) {
		t.Error("version flag not recognized")
	}
	if HasVersionFlag([]string{"-model", "single"}) {
		t.Error("false positive version flag")
	}

	var buf bytes.Buffer
	PrintVersion(&buf)
	if !strings.Contains(buf.String(), "taskbench") {
		t.Errorf("version banner = %q", buf.String())
	}
}

func TestRun_SingleQuiet(t *testing.T) {
	t.Parallel()
	a, err := New([]string{"taskbench", "-model", "single", "-tasks", "5", "-quiet"}, io.Discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, want %d", code, apperrors.ExitSuccess)
	}
	if !strings.Contains(out.String(), "single 5/5") {
		t.Errorf("quiet output = %q", out.String())
	}
}

func TestRun_ThreadedWritesSummaryFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "run.json")
	a, err := New([]string{
		"taskbench", "-model", "threaded", "-workers", "2", "-tasks", "8", "-quiet", "-output", path,
	}, io.Discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if code := a.Run(context.Background(), io.Discard); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading summary file: %v", err)
	}
	var s summary.RunSummary
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Model != "threaded" || s.TaskCount != 8 {
		t.Errorf("summary = %+v", s)
	}
}

func TestRun_TimeoutExitCode(t *testing.T) {
	t.Parallel()
	// 50 io tasks at >= 2ms each cannot finish within 5ms.
	a, err := New([]string{
		"taskbench", "-model", "single", "-tasks", "50", "-timeout", "5ms", "-quiet",
	}, io.Discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if code := a.Run(context.Background(), io.Discard); code != apperrors.ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, apperrors.ExitSuccess},
		{"deadline", context.DeadlineExceeded, apperrors.ExitErrorTimeout},
		{"canceled", context.Canceled, apperrors.ExitErrorCanceled},
		{"config", apperrors.NewConfigError("bad"), apperrors.ExitErrorConfig},
		{"generic", errors.New("boom"), apperrors.ExitErrorGeneric},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
