package storage

import (
	"context"
	"time"

	"exflow/internal/diag"

	"github.com/google/uuid"
)

// Run describes one persisted analysis run.
type Run struct {
	ID        uuid.UUID
	Root      string
	StartedAt time.Time
	Files     int
	Units     int
	Findings  int
}

// FindingStore persists analysis runs and their diagnostics.
type FindingStore interface {
	// SaveRun stores run and its diagnostics in one transaction.
	SaveRun(ctx context.Context, run Run, findings []diag.Diagnostic) error

	// LatestRun returns the most recent run for root.
	LatestRun(ctx context.Context, root string) (*Run, error)

	// Findings returns the diagnostics of a run in report order.
	Findings(ctx context.Context, runID uuid.UUID) ([]diag.Diagnostic, error)

	// FindingsByFile returns a run's diagnostics located in file.
	FindingsByFile(ctx context.Context, runID uuid.UUID, file string) ([]diag.Diagnostic, error)

	Close() error
}
