// Package state persists run history using SQLite. Every program
// execution started from the CLI is recorded with its outcome and
// report, so past runs can be inspected later.
package state

import "time"

// RunStatus classifies how a recorded run ended.
type RunStatus string

const (
	// RunStatusSuccess means the program returned normally.
	RunStatusSuccess RunStatus = "success"
	// RunStatusPanic means the program raised a panic. The run itself
	// completed; the panic payload is in the report.
	RunStatusPanic RunStatus = "panic"
	// RunStatusFailed means the pipeline aborted before producing an
	// outcome, for example on a diagnostics failure.
	RunStatusFailed RunStatus = "failed"
)

// Run is one recorded program execution.
type Run struct {
	ID     string
	Source string
	Status RunStatus
	// Report holds the rendered report for completed runs.
	Report string
	// Error holds the pipeline error for failed runs.
	Error string
	// GasRemaining is set only for metered runs.
	GasRemaining *uint64
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// Store is the run-history interface the CLI depends on.
type Store interface {
	RecordRun(run *Run) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
	Close() error
}
