// Package source wraps the external scraper backends as isolated units of
// work with partial-result recovery.
package source

import (
	"context"
	"fmt"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// Outcome is a source unit's result. Recovered distinguishes "the unit ran
// to completion" from "the unit was interrupted and these records were
// salvaged from its autosave artifact". The salvaged-nothing case is still
// a success, not an error.
type Outcome struct {
	Records   []model.RawRecord
	Recovered bool
}

// Unit is one scraping backend. Run blocks until the backend finishes, is
// cancelled via ctx, or fails hard. Long scrapes are expected: there is no
// wall-clock timeout here beyond the interruption grace period, runs are
// bounded by MaxResults instead.
type Unit interface {
	Source() model.Source
	Run(ctx context.Context, q model.Query, opts model.RunOptions) (Outcome, error)
}

// ExecutionError indicates the underlying scraper exited with a genuine
// failure code. The captured diagnostic stream is attached for the caller;
// the core never retries these.
type ExecutionError struct {
	Source   model.Source
	ExitCode int
	Stderr   string
}

func (e *ExecutionError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("source: %s scraper exited with code %d", e.Source, e.ExitCode)
	}
	return fmt.Sprintf("source: %s scraper exited with code %d: %s", e.Source, e.ExitCode, e.Stderr)
}
