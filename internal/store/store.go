// Package store persists the run ledger so past scraping runs can be
// listed and inspected after the fact.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// ErrNotFound is returned when a run ID does not exist in the ledger.
var ErrNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Source model.Source    `json:"source,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the run-ledger persistence interface.
type Store interface {
	CreateRun(ctx context.Context, q model.Query, src model.Source, opts model.RunOptions) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the given driver. SQLite is the default for
// single-operator use; Postgres serves shared deployments.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q (want sqlite|postgres)", driver)
	}
}
