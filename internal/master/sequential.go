package master

import (
	"context"
	"sync"
	"time"

	"github.com/taskbench/taskbench/internal/logging"
	"github.com/taskbench/taskbench/internal/monitor"
	"github.com/taskbench/taskbench/internal/summary"
	"github.com/taskbench/taskbench/internal/worker"
)

// sequentialMaster is the baseline strategy: one execution context, the
// "queue" is an ordered iteration, and simulated I/O waits block the
// whole run. Worker count is constrained to 1.
type sequentialMaster struct {
	cfg  Config
	log  logging.Logger
	mon  *monitor.Monitor
	once sync.Once
}

func newSequential(cfg Config) *sequentialMaster {
	return &sequentialMaster{
		cfg: cfg,
		log: cfg.Logger,
		mon: monitor.New(cfg.SampleInterval, cfg.Logger),
	}
}

func (m *sequentialMaster) Run(ctx context.Context) (summary.RunSummary, error) {
	defer m.Shutdown()

	ctx, cancel := runDeadline(ctx, m.cfg.Timeout)
	defer cancel()

	m.log.Info("run starting",
		logging.String("model", string(ModelSingle)),
		logging.Int("tasks", len(m.cfg.Tasks)))

	m.mon.Start()
	start := time.Now()

	exec := worker.NewExecutor(1,
		worker.WithPayloads(m.cfg.Payloads),
		worker.WithLogger(m.log))
	m.cfg.Metrics.WorkerStarted()
	defer m.cfg.Metrics.WorkerStopped()

	results := make([]worker.Result, 0, len(m.cfg.Tasks))
	for _, t := range m.cfg.Tasks {
		if ctx.Err() != nil {
			break
		}
		res := exec.Execute(ctx, t)
		m.cfg.Metrics.ObserveTask(string(res.Status), res.Duration())
		results = append(results, res)
	}

	elapsed := time.Since(start)
	samples := m.mon.Stop()
	results, truncated := reconcile(ctx, m.cfg.Tasks, results)

	s := summary.Aggregate(string(ModelSingle), 1, results, samples, elapsed, truncated)
	m.log.Info("run complete",
		logging.Int("success", s.SuccessCount),
		logging.Int("failure", s.FailureCount),
		logging.Float64("throughput", s.Throughput))
	return s, nil
}

// Shutdown stops the monitor if Run did not get that far. The sequential
// strategy holds no other resources.
func (m *sequentialMaster) Shutdown() {
	m.once.Do(func() {
		m.mon.Stop()
	})
}
