// Package analytics is the computational core of the dashboard: it turns raw
// job/financial records into time-windowed statistics, derived ratios,
// per-rig utilization metrics, entity rankings, alerts, and the
// capability-gated view of all of the above.
package analytics

import (
	"context"
	"time"

	"github.com/wellfield/rigops/internal/domain"
)

// RecordSource is the read-only collaborator the analytics core pulls from.
// Implemented by storage.RecordStore; tests substitute in-memory fakes.
type RecordSource interface {
	// JobRecords returns records matching the filter context.
	JobRecords(ctx context.Context, f domain.FilterContext) ([]domain.JobRecord, error)
	// JobRecordsBetween returns all records in the inclusive calendar range,
	// ignoring selector filters.
	JobRecordsBetween(ctx context.Context, start, end time.Time) ([]domain.JobRecord, error)
	// ActiveRigs returns every rig currently in service.
	ActiveRigs(ctx context.Context) ([]domain.Rig, error)
	// Clients returns client reference data; limit <= 0 means all.
	Clients(ctx context.Context, limit int) ([]domain.Client, error)
	// FinancePosition returns the company balance snapshot.
	FinancePosition(ctx context.Context) (domain.FinancePosition, error)
	// Ping verifies the source is reachable at all.
	Ping(ctx context.Context) error
}
