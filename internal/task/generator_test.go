package task

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "github.com/taskbench/taskbench/internal/errors"
)

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()
	first, err := Generate(100, DefaultMix(), 42)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	second, err := Generate(100, DefaultMix(), 42)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(first) != 100 || len(second) != 100 {
		t.Fatalf("expected 100 tasks, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed diverged at index %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestGenerate_DifferentSeedsDiverge(t *testing.T) {
	t.Parallel()
	a, _ := Generate(200, DefaultMix(), 1)
	b, _ := Generate(200, DefaultMix(), 2)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical workloads")
	}
}

func TestGenerate_Validation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		n    int
		mix  Mix
	}{
		{"negative count", -1, DefaultMix()},
		{"negative ratio", 10, Mix{IO: -1, CPU: 1, Mixed: 1}},
		{"all zero ratios", 10, Mix{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Generate(tt.n, tt.mix, 0)
			var cfgErr apperrors.ConfigError
			if err == nil {
				t.Fatal("expected a ConfigError, got nil")
			}
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigError, got %T: %v", err, err)
			}
		})
	}
}

func TestGenerate_ZeroTasks(t *testing.T) {
	t.Parallel()
	tasks, err := Generate(0, DefaultMix(), 7)
	if err != nil {
		t.Fatalf("Generate(0, ...) returned error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty slice, got %d tasks", len(tasks))
	}
}

func TestGenerate_ExclusiveMix(t *testing.T) {
	t.Parallel()
	tasks, err := Generate(50, Mix{CPU: 1}, 3)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	for _, tk := range tasks {
		if tk.Kind != KindCPU {
			t.Fatalf("cpu-only mix produced %s task %d", tk.Kind, tk.ID)
		}
	}
}

// TestGenerate_Properties verifies the structural invariants of generated
// workloads for arbitrary sizes and seeds.
func TestGenerate_Properties(t *testing.T) {
	t.Parallel()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("IDs are 1..n in submission order with valid kinds and bounded intensity", prop.ForAll(
		func(n int, seed int64) bool {
			tasks, err := Generate(n, DefaultMix(), seed)
			if err != nil || len(tasks) != n {
				return false
			}
			for i, tk := range tasks {
				if tk.ID != i+1 || !tk.Kind.Valid() {
					return false
				}
				if tk.Intensity < MinIntensity || tk.Intensity > MaxIntensity {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 500),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestUniform(t *testing.T) {
	t.Parallel()
	tasks := Uniform(10, KindCPU, MinIntensity)
	if len(tasks) != 10 {
		t.Fatalf("expected 10 tasks, got %d", len(tasks))
	}
	for i, tk := range tasks {
		if tk.ID != i+1 || tk.Kind != KindCPU || tk.Intensity != MinIntensity {
			t.Errorf("unexpected task at %d: %v", i, tk)
		}
	}
}
