// Package summary aggregates per-task results and monitor samples into
// the run summary consumed by the reporting layer.
package summary

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskbench/taskbench/internal/monitor"
	"github.com/taskbench/taskbench/internal/task"
	"github.com/taskbench/taskbench/internal/worker"
)

// RunSummary is the outcome of one complete run. It is built once, at
// the end of the run, from the full result set and monitor samples.
type RunSummary struct {
	RunID          string                `json:"run_id"`
	Model          string                `json:"model"`
	WorkerCount    int                   `json:"worker_count"`
	TaskCount      int                   `json:"task_count"`
	ElapsedSeconds float64               `json:"elapsed_seconds"`
	Throughput     float64               `json:"throughput"`
	SuccessCount   int                   `json:"success_count"`
	FailureCount   int                   `json:"failure_count"`
	Truncated      bool                  `json:"truncated"`
	AvgTaskSeconds float64               `json:"avg_task_seconds"`
	AvgByKind      map[task.Kind]float64 `json:"avg_by_kind"`
	// CPUSamples and MemorySamples are flat projections of Samples,
	// serialized separately because the plotting layer consumes plain
	// series rather than the structured readings.
	CPUSamples     []float64             `json:"cpu_samples"`
	MemorySamples  []float64             `json:"memory_samples"`
	Samples        []monitor.Sample      `json:"samples"`
	Results        []worker.Result       `json:"results"`
}

// Aggregate folds results, samples and the measured elapsed time into a
// RunSummary. It is pure apart from the generated RunID: counts come
// from partitioning on status, throughput is task_count/elapsed, and
// per-task timing is derived only from the result fields.
func Aggregate(model string, workers int, results []worker.Result, samples []monitor.Sample, elapsed time.Duration, truncated bool) RunSummary {
	s := RunSummary{
		RunID:          uuid.NewString(),
		Model:          model,
		WorkerCount:    workers,
		TaskCount:      len(results),
		ElapsedSeconds: elapsed.Seconds(),
		Truncated:      truncated,
		AvgByKind:      make(map[task.Kind]float64),
		CPUSamples:     make([]float64, len(samples)),
		MemorySamples:  make([]float64, len(samples)),
		Samples:        samples,
		Results:        results,
	}
	for i, sample := range samples {
		s.CPUSamples[i] = sample.CPUPercent
		s.MemorySamples[i] = sample.MemPercent
	}

	if len(results) > 0 && elapsed > 0 {
		s.Throughput = float64(len(results)) / elapsed.Seconds()
	}

	var totalSeconds float64
	kindTotals := make(map[task.Kind]float64)
	kindCounts := make(map[task.Kind]int)

	for _, res := range results {
		if res.Failed() {
			s.FailureCount++
		} else {
			s.SuccessCount++
		}
		d := res.Duration().Seconds()
		totalSeconds += d
		kindTotals[res.Kind] += d
		kindCounts[res.Kind]++
	}

	if len(results) > 0 {
		s.AvgTaskSeconds = totalSeconds / float64(len(results))
	}
	for kind, total := range kindTotals {
		s.AvgByKind[kind] = total / float64(kindCounts[kind])
	}

	return s
}
