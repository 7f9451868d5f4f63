// Package task defines the unit of work dispatched to workers: the Task
// descriptor, the synthetic payload executors for each task kind, and a
// deterministic workload generator.
package task

import "fmt"

// Kind tags a task with the synthetic workload it simulates.
type Kind string

const (
	// KindIO is a wait-dominated workload (simulated I/O).
	KindIO Kind = "io"
	// KindCPU is a compute-dominated workload (bounded busy loop).
	KindCPU Kind = "cpu"
	// KindMixed runs a CPU phase followed by an I/O phase.
	KindMixed Kind = "mixed"
)

// Kinds lists all valid task kinds in generation order.
func Kinds() []Kind { return []Kind{KindIO, KindCPU, KindMixed} }

// Valid reports whether k is a known task kind.
func (k Kind) Valid() bool {
	switch k {
	case KindIO, KindCPU, KindMixed:
		return true
	}
	return false
}

// Task is an immutable description of one unit of work. IDs are unique
// within a run; creation order defines submission order but not
// completion order. The fields are plain values so a Task crosses the
// process boundary by serialization without loss.
type Task struct {
	ID        int  `json:"id"`
	Kind      Kind `json:"kind"`
	// Intensity scales the simulated duration/load. A negative intensity
	// is rejected by every payload executor, which makes an
	// always-failing task expressible as data.
	Intensity int `json:"intensity"`
}

// String implements fmt.Stringer for log output.
func (t Task) String() string {
	return fmt.Sprintf("task %d (%s, intensity %d)", t.ID, t.Kind, t.Intensity)
}
