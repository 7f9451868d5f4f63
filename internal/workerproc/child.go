// Package workerproc implements the child side of the process-pool
// strategy: a loop that decodes Task frames from stdin, executes them,
// and encodes Result frames to stdout. The parent re-execs the current
// binary with the worker environment variable set; cmd/taskbench routes
// into Run before any flag parsing happens.
package workerproc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/taskbench/taskbench/internal/logging"
	"github.com/taskbench/taskbench/internal/task"
	"github.com/taskbench/taskbench/internal/worker"
)

// EnvWorkerID marks a process as a pool worker and carries its ID.
const EnvWorkerID = "TASKBENCH_WORKER"

// IsChild reports whether the current process was spawned as a pool worker.
func IsChild() bool {
	return os.Getenv(EnvWorkerID) != ""
}

// WorkerID returns the worker ID from the environment, or 0 when unset
// or malformed.
func WorkerID() int {
	id, err := strconv.Atoi(os.Getenv(EnvWorkerID))
	if err != nil {
		return 0
	}
	return id
}

// Run executes the worker loop until in reaches EOF (the parent closed
// our stdin: end of input) and returns a process exit code. Any payload
// failure is already converted into a failure Result by the executor;
// only a broken pipe to the parent ends the loop with a non-zero code.
func Run(in io.Reader, out io.Writer, logger logging.Logger) int {
	if logger == nil {
		logger = logging.Nop()
	}
	id := WorkerID()
	exec := worker.NewExecutor(id, worker.WithLogger(logger))
	logger.Debug("worker process started", logging.Int("worker", id))

	dec := json.NewDecoder(in)
	enc := json.NewEncoder(out)

	for {
		var t task.Task
		if err := dec.Decode(&t); err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug("worker process finished", logging.Int("worker", id))
				return 0
			}
			logger.Error("task frame decode failed", err, logging.Int("worker", id))
			return 1
		}

		res := exec.Execute(context.Background(), t)
		if err := enc.Encode(res); err != nil {
			logger.Error("result frame encode failed", err, logging.Int("worker", id))
			return 1
		}
	}
}
