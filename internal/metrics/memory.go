package metrics

import (
	"runtime"
	"time"
)

// MemorySnapshot is a point-in-time view of the Go heap, reduced to
// what a run reports: live bytes and objects, plus the GC work done
// since the collector's baseline.
type MemorySnapshot struct {
	HeapAlloc   uint64        // bytes of live heap data
	HeapObjects uint64        // live allocation count
	GCCycles    uint32        // completed GC cycles since the baseline
	GCPause     time.Duration // cumulative GC pause since the baseline
}

// MemoryCollector reads runtime heap statistics relative to a baseline
// captured at creation. One collector belongs to one run, the same way
// the Prometheus registry does, so GC readings describe the run itself
// and not the process lifetime.
type MemoryCollector struct {
	baseGC    uint32
	basePause uint64
}

// NewMemoryCollector captures the GC baseline for a run.
func NewMemoryCollector() *MemoryCollector {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &MemoryCollector{baseGC: m.NumGC, basePause: m.PauseTotalNs}
}

// Snapshot reads the current heap statistics against the baseline.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:   m.HeapAlloc,
		HeapObjects: m.HeapObjects,
		GCCycles:    m.NumGC - mc.baseGC,
		GCPause:     time.Duration(m.PauseTotalNs - mc.basePause),
	}
}
