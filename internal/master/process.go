package master

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/taskbench/taskbench/internal/errors"
	"github.com/taskbench/taskbench/internal/logging"
	"github.com/taskbench/taskbench/internal/monitor"
	"github.com/taskbench/taskbench/internal/summary"
	"github.com/taskbench/taskbench/internal/task"
	"github.com/taskbench/taskbench/internal/worker"
	"github.com/taskbench/taskbench/internal/workerproc"
)

// childCommand builds the command for one pool worker: a re-exec of the
// current binary with the worker environment variable set. Tests
// substitute a broken command to exercise the crash path.
var childCommand = func(ctx context.Context, workerID int) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, apperrors.WrapError(err, "resolving executable for worker %d", workerID)
	}
	cmd := exec.CommandContext(ctx, exe)
	cmd.Env = append(os.Environ(), fmt.Sprintf("%s=%d", workerproc.EnvWorkerID, workerID))
	return cmd, nil
}

// childProc is the parent-side handle for one worker process: its
// command plus the JSON frame codecs over the stdio pipes.
type childProc struct {
	id        int
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	enc       *json.Encoder
	dec       *json.Decoder
	closeOnce sync.Once
}

func (c *childProc) send(t task.Task) error { return c.enc.Encode(t) }

func (c *childProc) recv() (worker.Result, error) {
	var res worker.Result
	err := c.dec.Decode(&res)
	return res, err
}

// close signals end of input by closing the child's stdin and reaps the
// process. Safe to call from both the feeder and Shutdown.
func (c *childProc) close() {
	c.closeOnce.Do(func() {
		c.stdin.Close()
		c.cmd.Wait()
	})
}

// processMaster runs one isolated child process per worker. There is no
// shared memory: tasks and results cross the process boundary as JSON
// frames, and the serialization overhead is part of what a run measures.
// A feeder goroutine per child pumps the shared in-memory queue to that
// child, one task in flight at a time, so a free child always picks up
// the next task.
type processMaster struct {
	cfg Config
	log logging.Logger
	mon *monitor.Monitor

	mu       sync.Mutex
	children []*childProc
	once     sync.Once
}

func newProcessPool(cfg Config) *processMaster {
	return &processMaster{
		cfg: cfg,
		log: cfg.Logger,
		mon: monitor.New(cfg.SampleInterval, cfg.Logger),
	}
}

func (m *processMaster) Run(ctx context.Context) (summary.RunSummary, error) {
	defer m.Shutdown()

	ctx, cancel := runDeadline(ctx, m.cfg.Timeout)
	defer cancel()

	m.log.Info("run starting",
		logging.String("model", string(ModelMultiprocess)),
		logging.Int("workers", m.cfg.Workers),
		logging.Int("tasks", len(m.cfg.Tasks)))

	m.mon.Start()
	start := time.Now()

	taskCh := make(chan task.Task, len(m.cfg.Tasks))
	for _, t := range m.cfg.Tasks {
		taskCh <- t
	}
	close(taskCh)

	resultCh := make(chan worker.Result, len(m.cfg.Tasks))

	var g errgroup.Group
	var spawnErr error
	spawned := 0
	for i := 0; i < m.cfg.Workers; i++ {
		id := i + 1
		child, err := m.spawn(ctx, id)
		if err != nil {
			spawnErr = err
			m.log.Error("worker process failed to start", err, logging.Int("worker", id))
			continue
		}
		spawned++
		m.cfg.Metrics.WorkerStarted()
		g.Go(func() error {
			defer m.cfg.Metrics.WorkerStopped()
			defer child.close()
			m.feed(ctx, child, taskCh, resultCh)
			return nil
		})
	}

	if spawned == 0 {
		m.mon.Stop()
		return summary.RunSummary{}, apperrors.WrapError(spawnErr, "no worker process could be started")
	}

	g.Wait()
	close(resultCh)

	results := drain(resultCh, make([]worker.Result, 0, len(m.cfg.Tasks)))
	elapsed := time.Since(start)
	samples := m.mon.Stop()
	results, truncated := reconcile(ctx, m.cfg.Tasks, results)

	s := summary.Aggregate(string(ModelMultiprocess), m.cfg.Workers, results, samples, elapsed, truncated)
	m.log.Info("run complete",
		logging.Int("success", s.SuccessCount),
		logging.Int("failure", s.FailureCount),
		logging.Float64("throughput", s.Throughput))
	return s, nil
}

// spawn starts one worker process and registers it for Shutdown.
func (m *processMaster) spawn(ctx context.Context, id int) (*childProc, error) {
	cmd, err := childCommand(ctx, id)
	if err != nil {
		return nil, err
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, apperrors.WrapError(err, "stdin pipe for worker %d", id)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, apperrors.WrapError(err, "stdout pipe for worker %d", id)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, apperrors.WrapError(err, "starting worker %d", id)
	}
	m.log.Debug("worker process started", logging.Int("worker", id), logging.Int("pid", cmd.Process.Pid))

	child := &childProc{
		id:    id,
		cmd:   cmd,
		stdin: stdin,
		enc:   json.NewEncoder(stdin),
		dec:   json.NewDecoder(stdout),
	}
	m.mu.Lock()
	m.children = append(m.children, child)
	m.mu.Unlock()
	return child, nil
}

// feed pumps tasks from the shared queue to one child until the queue is
// empty, the run context expires, or the child dies. A pipe error while
// a task is in flight converts that task into a failure result; the rest
// of the queue stays available to surviving workers.
func (m *processMaster) feed(ctx context.Context, child *childProc, taskCh <-chan task.Task, resultCh chan<- worker.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-taskCh:
			if !ok {
				return
			}
			if err := child.send(t); err != nil {
				resultCh <- m.lost(ctx, child, t, err)
				return
			}
			res, err := child.recv()
			if err != nil {
				resultCh <- m.lost(ctx, child, t, err)
				return
			}
			m.cfg.Metrics.ObserveTask(string(res.Status), res.Duration())
			resultCh <- res
		}
	}
}

// lost converts an in-flight task whose child went away into a failure
// result: a timeout when the run deadline killed the child, a worker
// crash otherwise.
func (m *processMaster) lost(ctx context.Context, child *childProc, t task.Task, cause error) worker.Result {
	now := time.Now()
	if contextReason(ctx, cause) == worker.ReasonTimeout {
		return worker.Unresolved(t, worker.ReasonTimeout, now)
	}
	crash := apperrors.WorkerCrashError{WorkerID: child.id, Cause: cause}
	m.log.Error("worker process died with task in flight", crash,
		logging.Int("worker", child.id), logging.Int("task", t.ID))
	return worker.Crashed(t, child.id, crash, now)
}

// Shutdown closes every child's stdin (end-of-input) and reaps the
// processes, then stops the monitor. Guaranteed release on all exit
// paths; idempotent.
func (m *processMaster) Shutdown() {
	m.once.Do(func() {
		m.mu.Lock()
		children := m.children
		m.mu.Unlock()
		for _, c := range children {
			c.close()
		}
		m.mon.Stop()
	})
}
