// Package monitor samples wall-clock, CPU and memory usage on a fixed
// schedule, concurrently with and decoupled from task execution. One
// Monitor instance belongs to exactly one run.
package monitor

import (
	"sync"
	"time"

	"github.com/taskbench/taskbench/internal/logging"
	"github.com/taskbench/taskbench/internal/metrics"
)

// DefaultInterval is the sampling cadence used when the caller does not
// configure one.
const DefaultInterval = 100 * time.Millisecond

// Sample is one timed resource reading. Elapsed values are strictly
// increasing across the samples of a run.
type Sample struct {
	Elapsed     time.Duration `json:"elapsed"`
	CPUPercent  float64       `json:"cpu_percent"`
	MemPercent  float64       `json:"mem_percent"`
	RSSBytes    uint64        `json:"rss_bytes"`
	HeapAlloc   uint64        `json:"heap_alloc"`
	HeapObjects uint64        `json:"heap_objects"`
	GCCycles    uint32        `json:"gc_cycles"`
	GCPause     time.Duration `json:"gc_pause"`
}

// Monitor owns a sampling goroutine. The sample slice is written only by
// that goroutine and handed to the caller at Stop, so no reading is ever
// mutated concurrently.
type Monitor struct {
	interval time.Duration
	logger   logging.Logger
	memory   *metrics.MemoryCollector

	samples []Sample
	done    chan struct{}
	wg      sync.WaitGroup
	started time.Time
	running bool
	mu      sync.Mutex
}

// New creates a Monitor sampling at the given interval. A non-positive
// interval falls back to DefaultInterval.
func New(interval time.Duration, logger logging.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Monitor{
		interval: interval,
		logger:   logger,
		memory:   metrics.NewMemoryCollector(),
	}
}

// Start launches the sampling goroutine. Starting an already running
// monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.samples = nil
	m.done = make(chan struct{})
	m.started = time.Now()

	// Prime the CPU counter so the first tick reports a real delta.
	Snapshot()

	m.wg.Add(1)
	go m.loop()
	m.logger.Debug("monitor started", logging.String("interval", m.interval.String()))
}

// loop takes one sample per tick until Stop closes the done channel.
func (m *Monitor) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.samples = append(m.samples, m.sample())
		}
	}
}

// sample collects one reading relative to the monitor's start time.
func (m *Monitor) sample() Sample {
	stats := Snapshot()
	heap := m.memory.Snapshot()
	return Sample{
		Elapsed:     time.Since(m.started),
		CPUPercent:  stats.CPUPercent,
		MemPercent:  stats.MemPercent,
		RSSBytes:    stats.RSSBytes,
		HeapAlloc:   heap.HeapAlloc,
		HeapObjects: heap.HeapObjects,
		GCCycles:    heap.GCCycles,
		GCPause:     heap.GCPause,
	}
}

// Stop halts sampling and returns the collected samples, with one final
// reading appended so even runs shorter than the interval report usage.
// Stopping an already stopped monitor returns the previous samples.
func (m *Monitor) Stop() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return m.samples
	}
	m.running = false
	close(m.done)
	m.wg.Wait()

	m.samples = append(m.samples, m.sample())
	m.logger.Debug("monitor stopped", logging.Int("samples", len(m.samples)))
	return m.samples
}
