package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/taskbench/taskbench/internal/bench"
	"github.com/taskbench/taskbench/internal/cli"
	apperrors "github.com/taskbench/taskbench/internal/errors"
	"github.com/taskbench/taskbench/internal/master"
	"github.com/taskbench/taskbench/internal/metrics"
	"github.com/taskbench/taskbench/internal/task"
)

// runSingle executes one configured model and presents its summary.
func (a *Application) runSingle(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	tasks, err := task.Generate(a.Config.Tasks, a.Config.Mix(), a.Config.Seed)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating tasks: %v\n", err)
		return exitCode(err)
	}

	model, err := master.ParseModel(a.Config.Model)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return exitCode(err)
	}

	m, err := master.New(master.Config{
		Model:          model,
		Workers:        a.Config.Workers,
		Tasks:          tasks,
		Timeout:        a.Config.Timeout,
		SampleInterval: a.Config.SampleInterval,
		Logger:         a.Logger,
		Metrics:        metrics.New(),
	})
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return exitCode(err)
	}
	defer m.Shutdown()

	spin := cli.NewRunSpinner(a.Config.Quiet, a.Config.Model, a.Config.Workers, a.Config.Tasks)
	spin.Start()
	s, err := m.Run(ctx)
	spin.Stop()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Run failed: %v\n", err)
		return exitCode(err)
	}

	cli.DisplayRunSummary(out, s, cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
	})

	if err := cli.WriteSummaryFile(a.Config.OutputFile, s); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving summary: %v\n", err)
		return apperrors.ExitErrorGeneric
	}

	if err := ctx.Err(); err != nil {
		return exitCode(err)
	}
	if s.Truncated {
		return apperrors.ExitErrorTimeout
	}
	return apperrors.ExitSuccess
}

// runBenchmark executes the comprehensive sweep across all models.
func (a *Application) runBenchmark(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	report, err := bench.Run(ctx, bench.Options{
		Mix:            a.Config.Mix(),
		Seed:           a.Config.Seed,
		Timeout:        a.Config.Timeout,
		SampleInterval: a.Config.SampleInterval,
		Logger:         a.Logger,
	})
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Benchmark failed: %v\n", err)
		return exitCode(err)
	}

	if !a.Config.Quiet {
		cli.DisplayBenchReport(out, report)
	}

	if a.Config.OutputFile != "" {
		if err := bench.WriteReportFile(a.Config.OutputFile, report); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving report: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		if !a.Config.Quiet {
			fmt.Fprintf(out, "\nReport saved to: %s\n", a.Config.OutputFile)
		}
	}
	return apperrors.ExitSuccess
}
