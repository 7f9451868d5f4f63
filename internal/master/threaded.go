package master

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskbench/taskbench/internal/logging"
	"github.com/taskbench/taskbench/internal/monitor"
	"github.com/taskbench/taskbench/internal/summary"
	"github.com/taskbench/taskbench/internal/task"
	"github.com/taskbench/taskbench/internal/worker"
)

// threadedMaster runs a pool of goroutines over a shared task channel.
// The closed channel is the end-of-input sentinel every worker observes;
// channel receive gives the blocking, condition-signaled pop the
// strategy requires, with no polling.
type threadedMaster struct {
	cfg  Config
	log  logging.Logger
	mon  *monitor.Monitor
	once sync.Once
}

func newThreaded(cfg Config) *threadedMaster {
	return &threadedMaster{
		cfg: cfg,
		log: cfg.Logger,
		mon: monitor.New(cfg.SampleInterval, cfg.Logger),
	}
}

func (m *threadedMaster) Run(ctx context.Context) (summary.RunSummary, error) {
	defer m.Shutdown()

	ctx, cancel := runDeadline(ctx, m.cfg.Timeout)
	defer cancel()

	m.log.Info("run starting",
		logging.String("model", string(ModelThreaded)),
		logging.Int("workers", m.cfg.Workers),
		logging.Int("tasks", len(m.cfg.Tasks)))

	m.mon.Start()
	start := time.Now()

	// Both queues are buffered to the batch size: submission never
	// blocks, and workers hand off results without waiting on the
	// collector.
	taskCh := make(chan task.Task, len(m.cfg.Tasks))
	for _, t := range m.cfg.Tasks {
		taskCh <- t
	}
	close(taskCh)

	resultCh := make(chan worker.Result, len(m.cfg.Tasks))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < m.cfg.Workers; i++ {
		id := i + 1
		exec := worker.NewExecutor(id,
			worker.WithPayloads(m.cfg.Payloads),
			worker.WithLogger(m.log))
		m.cfg.Metrics.WorkerStarted()
		g.Go(func() error {
			defer m.cfg.Metrics.WorkerStopped()
			m.log.Debug("worker started", logging.Int("worker", id))
			for t := range taskCh {
				if gctx.Err() != nil {
					return nil
				}
				res := exec.Execute(gctx, t)
				m.cfg.Metrics.ObserveTask(string(res.Status), res.Duration())
				resultCh <- res
			}
			m.log.Debug("worker observed end of input", logging.Int("worker", id))
			return nil
		})
	}

	g.Wait()
	close(resultCh)

	results := drain(resultCh, make([]worker.Result, 0, len(m.cfg.Tasks)))
	elapsed := time.Since(start)
	samples := m.mon.Stop()
	results, truncated := reconcile(ctx, m.cfg.Tasks, results)

	s := summary.Aggregate(string(ModelThreaded), m.cfg.Workers, results, samples, elapsed, truncated)
	m.log.Info("run complete",
		logging.Int("success", s.SuccessCount),
		logging.Int("failure", s.FailureCount),
		logging.Float64("throughput", s.Throughput))
	return s, nil
}

// Shutdown stops the monitor; pool goroutines are owned by Run and have
// already drained or observed cancellation by the time Run returns.
func (m *threadedMaster) Shutdown() {
	m.once.Do(func() {
		m.mon.Stop()
	})
}
