package task

import (
	"math/rand"

	apperrors "github.com/taskbench/taskbench/internal/errors"
)

// Intensity bounds for generated tasks. Kept small so a default run
// finishes in seconds while still separating the three strategies.
const (
	MinIntensity = 1
	MaxIntensity = 8
)

// Mix holds the relative ratios of task kinds in a generated workload.
// The ratios need not sum to 1; they are normalized during generation.
type Mix struct {
	IO    float64 `json:"io"`
	CPU   float64 `json:"cpu"`
	Mixed float64 `json:"mixed"`
}

// DefaultMix returns an even three-way split, matching a uniform random
// choice between kinds.
func DefaultMix() Mix { return Mix{IO: 1, CPU: 1, Mixed: 1} }

// Validate checks that the mix has no negative ratio and at least one
// positive one.
func (m Mix) Validate() error {
	if m.IO < 0 || m.CPU < 0 || m.Mixed < 0 {
		return apperrors.NewConfigError("task mix ratios must be non-negative, got io=%v cpu=%v mixed=%v", m.IO, m.CPU, m.Mixed)
	}
	if m.IO+m.CPU+m.Mixed == 0 {
		return apperrors.NewConfigError("task mix must have at least one positive ratio")
	}
	return nil
}

// pick selects a kind for the given random draw in [0, 1).
func (m Mix) pick(u float64) Kind {
	total := m.IO + m.CPU + m.Mixed
	switch {
	case u < m.IO/total:
		return KindIO
	case u < (m.IO+m.CPU)/total:
		return KindCPU
	default:
		return KindMixed
	}
}

// Generate produces n tasks with IDs 1..n, kinds drawn from the mix and
// intensities in [MinIntensity, MaxIntensity]. The sequence is
// deterministic for a given seed, so two runs with the same seed process
// identical workloads regardless of strategy.
//
// Returns a ConfigError when n is negative or the mix is invalid.
func Generate(n int, mix Mix, seed int64) ([]Task, error) {
	if n < 0 {
		return nil, apperrors.NewConfigError("task count must be non-negative, got %d", n)
	}
	if err := mix.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	tasks := make([]Task, 0, n)
	for i := 0; i < n; i++ {
		tasks = append(tasks, Task{
			ID:        i + 1,
			Kind:      mix.pick(rng.Float64()),
			Intensity: MinIntensity + rng.Intn(MaxIntensity-MinIntensity+1),
		})
	}
	return tasks, nil
}

// Uniform produces n tasks of a single kind with a fixed intensity.
// Used by benchmarks that want a homogeneous workload.
func Uniform(n int, kind Kind, intensity int) []Task {
	tasks := make([]Task, 0, n)
	for i := 0; i < n; i++ {
		tasks = append(tasks, Task{ID: i + 1, Kind: kind, Intensity: intensity})
	}
	return tasks
}
