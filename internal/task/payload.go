package task

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNegativeIntensity is returned by every payload executor when a task
// carries a negative intensity. Tests and callers use it to inject
// deterministic failures that survive serialization across the process
// boundary.
var ErrNegativeIntensity = errors.New("negative intensity")

// Payload executes the synthetic body of one task kind. Implementations
// must respect ctx cancellation so a run-level deadline can interrupt
// in-flight work.
type Payload func(ctx context.Context, intensity int) error

// Registry maps each task kind to its payload executor. The executors
// are swappable; only the kind tag and intensity are part of the data
// contract.
type Registry map[Kind]Payload

const (
	// ioUnit is the simulated wait per intensity unit.
	ioUnit = 2 * time.Millisecond
	// cpuIterationsPerUnit sizes the busy loop per intensity unit.
	cpuIterationsPerUnit = 200_000
	// cpuCancelCheckEvery bounds how long a cancellation can go unnoticed
	// inside the busy loop.
	cpuCancelCheckEvery = 16_384
)

// sink defeats dead-code elimination of the busy loop.
var sink uint64

// IOPayload simulates a wait-dominated workload by sleeping
// intensity*ioUnit, waking early on cancellation.
func IOPayload(ctx context.Context, intensity int) error {
	if intensity < 0 {
		return fmt.Errorf("io payload: %w", ErrNegativeIntensity)
	}
	timer := time.NewTimer(time.Duration(intensity) * ioUnit)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CPUPayload simulates a compute-dominated workload with a bounded
// integer-mixing loop.
func CPUPayload(ctx context.Context, intensity int) error {
	if intensity < 0 {
		return fmt.Errorf("cpu payload: %w", ErrNegativeIntensity)
	}
	var acc uint64 = 0x9e3779b97f4a7c15
	iterations := intensity * cpuIterationsPerUnit
	for i := 0; i < iterations; i++ {
		acc ^= acc << 13
		acc ^= acc >> 7
		acc += uint64(i)
		if i%cpuCancelCheckEvery == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
	sink = acc
	return nil
}

// MixedPayload runs the CPU phase then the I/O phase sequentially,
// splitting the intensity between them.
func MixedPayload(ctx context.Context, intensity int) error {
	if intensity < 0 {
		return fmt.Errorf("mixed payload: %w", ErrNegativeIntensity)
	}
	half := intensity / 2
	if err := CPUPayload(ctx, intensity-half); err != nil {
		return err
	}
	return IOPayload(ctx, half)
}

// DefaultPayloads returns the standard executor registry.
func DefaultPayloads() Registry {
	return Registry{
		KindIO:    IOPayload,
		KindCPU:   CPUPayload,
		KindMixed: MixedPayload,
	}
}
