// Package metrics exposes per-run execution counters and runtime memory
// readings. Every Metrics instance owns its own Prometheus registry so
// concurrent or repeated runs never share collector state.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Metrics aggregates the Prometheus collectors for one run.
type Metrics struct {
	registry      *prometheus.Registry
	tasksTotal    *prometheus.CounterVec
	taskDuration  prometheus.Histogram
	activeWorkers prometheus.Gauge
	handler       http.Handler
}

// New creates a Metrics instance backed by a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskbench_tasks_completed_total",
			Help: "Number of completed tasks partitioned by result status.",
		}, []string{"status"}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskbench_task_duration_seconds",
			Help:    "Per-task execution duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		activeWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskbench_workers_active",
			Help: "Number of workers currently running.",
		}),
	}

	registry.MustRegister(m.tasksTotal, m.taskDuration, m.activeWorkers)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// ObserveTask records one completed task with its status label and duration.
func (m *Metrics) ObserveTask(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.tasksTotal.WithLabelValues(status).Inc()
	m.taskDuration.Observe(d.Seconds())
}

// WorkerStarted increments the active worker gauge.
func (m *Metrics) WorkerStarted() {
	if m == nil {
		return
	}
	m.activeWorkers.Inc()
}

// WorkerStopped decrements the active worker gauge.
func (m *Metrics) WorkerStopped() {
	if m == nil {
		return
	}
	m.activeWorkers.Dec()
}

// Gather collects the current metric families from the run's registry.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

// WritePrometheus serves the run's metrics in Prometheus exposition
// format. The reporting layer decides whether to mount it anywhere.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
