package cli

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
)

// ProgressRefreshRate defines the refresh frequency of the run spinner.
const ProgressRefreshRate = 200 * time.Millisecond

// Spinner is an interface that abstracts the behavior of a terminal
// spinner, decoupling the run display from a specific implementation
// and making the quiet-mode no-op trivial.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements
// the `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Suffix = suffix
}

// nopSpinner is the quiet-mode spinner: all controls do nothing.
type nopSpinner struct{}

func (nopSpinner) Start()                    {}
func (nopSpinner) Stop()                     {}
func (nopSpinner) UpdateSuffix(suffix string) {}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// NewRunSpinner returns a spinner describing the run in flight, or a
// no-op spinner in quiet mode.
func NewRunSpinner(quiet bool, model string, workers, tasks int) Spinner {
	if quiet {
		return nopSpinner{}
	}
	s := newSpinner()
	s.UpdateSuffix(fmt.Sprintf(" running %s model: %d workers, %d tasks", model, workers, tasks))
	return s
}
