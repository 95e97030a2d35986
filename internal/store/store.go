// Package store defines the archive of finished simulation reports.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (default and for testing).
//
// Reports are immutable once saved; a stored run is never resumed as a
// live session.
package store

import (
	"context"
	"errors"

	"github.com/atmx/fib-dozens/internal/model"
)

// ErrNotFound is returned when no run exists for an ID.
var ErrNotFound = errors.New("store: run not found")

// Store is the persistence interface for run reports.
type Store interface {
	// SaveRun persists a finished run together with its spin rows.
	SaveRun(ctx context.Context, run *model.Run) error

	// GetRun retrieves a run by ID without its spin rows.
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// GetSpins returns the spin rows of a run in spin order.
	GetSpins(ctx context.Context, id string) ([]model.SpinResult, error)

	// ListRuns returns all runs, newest first, without spin rows.
	ListRuns(ctx context.Context) ([]model.Run, error)
}
