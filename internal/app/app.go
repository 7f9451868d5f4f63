// Package app wires configuration, logging, the master factory and the
// CLI presentation into the taskbench executable: parse flags, pick the
// mode (single run or benchmark sweep), run it under signal-aware
// cancellation, and translate the outcome into a process exit code.
package app

import (
	"context"
	"errors"
	"flag"
	"io"

	"github.com/taskbench/taskbench/internal/config"
	apperrors "github.com/taskbench/taskbench/internal/errors"
	"github.com/taskbench/taskbench/internal/logging"
)

// Application represents the taskbench application instance.
type Application struct {
	Config    config.AppConfig
	Logger    logging.Logger
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithLogger sets a custom logger for the application.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "taskbench"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if app.Logger == nil {
		app.Logger = buildLogger(cfg)
	}
	return app, nil
}

// buildLogger picks the logger for the configured verbosity: quiet
// drops everything, verbose keeps console output, the default stays
// silent so run output is not interleaved with log lines.
func buildLogger(cfg config.AppConfig) logging.Logger {
	if cfg.Quiet || !cfg.Verbose {
		return logging.Nop()
	}
	return logging.NewDefaultLogger()
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Benchmark {
		return a.runBenchmark(ctx, out)
	}
	return a.runSingle(ctx, out)
}

// exitCode maps a run error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return apperrors.ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return apperrors.ExitErrorCanceled
	default:
		var cfgErr apperrors.ConfigError
		if errors.As(err, &cfgErr) {
			return apperrors.ExitErrorConfig
		}
		return apperrors.ExitErrorGeneric
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// IsConfigError checks if the error came from configuration parsing or
// validation.
func IsConfigError(err error) bool {
	var cfgErr apperrors.ConfigError
	return errors.As(err, &cfgErr)
}
