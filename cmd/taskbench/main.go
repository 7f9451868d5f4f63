package main

import (
	"context"
	"os"

	"github.com/taskbench/taskbench/internal/app"
	apperrors "github.com/taskbench/taskbench/internal/errors"
	"github.com/taskbench/taskbench/internal/logging"
	"github.com/taskbench/taskbench/internal/workerproc"
)

func main() {
	// A process spawned by the multiprocess master runs the worker loop
	// and nothing else; flags never apply to it.
	if workerproc.IsChild() {
		os.Exit(workerproc.Run(os.Stdin, os.Stdout, logging.NewLogger(os.Stderr, "worker")))
	}

	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		if app.IsConfigError(err) {
			os.Exit(apperrors.ExitErrorConfig)
		}
		os.Exit(apperrors.ExitErrorGeneric)
	}

	exitCode := application.Run(context.Background(), os.Stdout)
	os.Exit(exitCode)
}
