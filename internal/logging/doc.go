// Package logging provides a unified logging interface for the task
// dispatch core. It abstracts the underlying logging implementation,
// allowing consistent logging across components while supporting
// multiple backends.
//
// Loggers are constructed per run and passed explicitly to the master,
// workers and monitor; there is no process-wide singleton, which keeps
// runs independent and testable in isolation.
package logging
