package port

import "ngramlm/internal/domain"

// RunStore records evaluation runs.
type RunStore interface {
	PutRun(run domain.Run) error

	// ListRuns returns the most recent runs first. limit <= 0 returns all.
	ListRuns(limit int) ([]domain.Run, error)

	ClearRuns() error

	Close() error
}
