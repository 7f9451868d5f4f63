// Package config owns the command-line and environment configuration
// surface. Priority order is CLI flags > TASKBENCH_* environment
// variables > defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"runtime"
	"time"

	apperrors "github.com/taskbench/taskbench/internal/errors"
	"github.com/taskbench/taskbench/internal/master"
	"github.com/taskbench/taskbench/internal/monitor"
	"github.com/taskbench/taskbench/internal/task"
)

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "TASKBENCH_"

// Defaults for the run parameters.
const (
	DefaultModel          = string(master.ModelSingle)
	DefaultTasks          = 50
	DefaultSeed           = 1
	DefaultTimeout        = 5 * time.Minute
	DefaultSampleInterval = monitor.DefaultInterval
)

// AppConfig holds the complete configuration for one invocation.
type AppConfig struct {
	// Model selects the execution strategy: single, threaded or
	// multiprocess. Ignored in benchmark mode, which sweeps all three.
	Model string
	// Workers is the pool size for the threaded and multiprocess models.
	Workers int
	// Tasks is the number of synthetic tasks to generate.
	Tasks int

	// MixIO, MixCPU and MixMixed are the relative workload ratios fed to
	// the task generator.
	MixIO    float64
	MixCPU   float64
	MixMixed float64
	// Seed makes the generated batch reproducible.
	Seed int64

	// Timeout bounds a whole run; on expiry the run truncates gracefully.
	Timeout time.Duration
	// SampleInterval is the resource monitor cadence.
	SampleInterval time.Duration

	// Benchmark runs the comprehensive model sweep instead of one model.
	Benchmark bool
	Quiet     bool
	Verbose   bool
	// OutputFile receives the JSON summary or benchmark report when set.
	OutputFile string
}

// DefaultConfig returns the configuration used when no flag or
// environment variable overrides it.
func DefaultConfig() AppConfig {
	return AppConfig{
		Model:          DefaultModel,
		Workers:        runtime.NumCPU(),
		Tasks:          DefaultTasks,
		MixIO:          1,
		MixCPU:         1,
		MixMixed:       1,
		Seed:           DefaultSeed,
		Timeout:        DefaultTimeout,
		SampleInterval: DefaultSampleInterval,
	}
}

// Mix bundles the ratio fields into the generator's Mix type.
func (c AppConfig) Mix() task.Mix {
	return task.Mix{IO: c.MixIO, CPU: c.MixCPU, Mixed: c.MixMixed}
}

// ParseConfig parses command-line arguments into an AppConfig, applies
// environment overrides for flags left unset, and validates the result.
// Returns flag.ErrHelp unchanged when -h/--help was requested.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	config := DefaultConfig()

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	fs.StringVar(&config.Model, "model", config.Model, "Execution model: single, threaded or multiprocess")
	fs.StringVar(&config.Model, "m", config.Model, "Alias for -model")
	fs.IntVar(&config.Workers, "workers", config.Workers, "Number of workers for pooled models")
	fs.IntVar(&config.Workers, "w", config.Workers, "Alias for -workers")
	fs.IntVar(&config.Tasks, "tasks", config.Tasks, "Number of tasks to generate")
	fs.IntVar(&config.Tasks, "t", config.Tasks, "Alias for -tasks")

	fs.Float64Var(&config.MixIO, "mix-io", config.MixIO, "Relative ratio of io-bound tasks")
	fs.Float64Var(&config.MixCPU, "mix-cpu", config.MixCPU, "Relative ratio of cpu-bound tasks")
	fs.Float64Var(&config.MixMixed, "mix-mixed", config.MixMixed, "Relative ratio of mixed tasks")
	fs.Int64Var(&config.Seed, "seed", config.Seed, "Seed for the task generator")

	fs.DurationVar(&config.Timeout, "timeout", config.Timeout, "Deadline for a whole run (e.g. 30s, 5m)")
	fs.DurationVar(&config.SampleInterval, "sample-interval", config.SampleInterval, "Resource sampling interval")

	fs.BoolVar(&config.Benchmark, "benchmark", config.Benchmark, "Run the comprehensive model sweep")
	fs.BoolVar(&config.Quiet, "quiet", config.Quiet, "Minimal output, suitable for scripting")
	fs.BoolVar(&config.Quiet, "q", config.Quiet, "Alias for -quiet")
	fs.BoolVar(&config.Verbose, "verbose", config.Verbose, "Include per-task results in the output")
	fs.BoolVar(&config.Verbose, "v", config.Verbose, "Alias for -verbose")
	fs.StringVar(&config.OutputFile, "output", config.OutputFile, "Write the JSON summary to this file")
	fs.StringVar(&config.OutputFile, "o", config.OutputFile, "Alias for -output")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected argument %q", fs.Arg(0))
	}

	applyEnvOverrides(&config, fs)

	if err := config.Validate(); err != nil {
		fmt.Fprintf(errWriter, "Invalid configuration: %v\n", err)
		return AppConfig{}, err
	}
	return config, nil
}

// Validate checks the configuration invariants shared by both modes.
func (c AppConfig) Validate() error {
	if _, err := master.ParseModel(c.Model); err != nil {
		return err
	}
	if c.Workers < 1 {
		return apperrors.NewConfigError("workers must be >= 1, got %d", c.Workers)
	}
	if c.Tasks < 0 {
		return apperrors.NewConfigError("tasks must be >= 0, got %d", c.Tasks)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.SampleInterval <= 0 {
		return apperrors.NewConfigError("sample-interval must be positive, got %s", c.SampleInterval)
	}
	return c.Mix().Validate()
}
