package cli

import (
	"strings"
	"testing"

	"github.com/briandowns/spinner"
)

// mockSpinner records interface calls for assertions.
type mockSpinner struct {
	started bool
	stopped bool
	suffix  string
}

func (m *mockSpinner) Start()                     { m.started = true }
func (m *mockSpinner) Stop()                      { m.stopped = true }
func (m *mockSpinner) UpdateSuffix(suffix string) { m.suffix = suffix }

func TestNewRunSpinner_DescribesTheRun(t *testing.T) {
	mock := &mockSpinner{}
	orig := newSpinner
	t.Cleanup(func() { newSpinner = orig })
	newSpinner = func(options ...spinner.Option) Spinner { return mock }

	s := NewRunSpinner(false, "threaded", 4, 100)
	if s != Spinner(mock) {
		t.Fatal("NewRunSpinner should return the constructed spinner")
	}
	for _, want := range []string{"threaded", "4 workers", "100 tasks"} {
		if !strings.Contains(mock.suffix, want) {
			t.Errorf("suffix %q missing %q", mock.suffix, want)
		}
	}
}

func TestNewRunSpinner_QuietIsNoOp(t *testing.T) {
	s := NewRunSpinner(true, "single", 1, 10)
	if _, ok := s.(nopSpinner); !ok {
		t.Fatalf("quiet mode should return the no-op spinner, got %T", s)
	}
	s.Start()
	s.UpdateSuffix("ignored")
	s.Stop()
}
