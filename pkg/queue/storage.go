package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EnqueuerRepository defines the interface for item creation
type EnqueuerRepository interface {
	// CreateItem persists a new pending item
	CreateItem(ctx context.Context, item *Item) error

	// CreateItems persists multiple pending items in one unit of work
	CreateItems(ctx context.Context, items []*Item) error
}

// DispatcherRepository defines the interface for dispatch cycle operations.
//
// Each Mark* operation must atomically apply the status transition and, for
// terminal transitions, append the corresponding LogEntry in the same unit
// of work, so logs never disagree with item status.
type DispatcherRepository interface {
	// SelectDue returns pending items with scheduledFor <= now, ordered by
	// priority ascending then scheduledFor ascending, capped at limit
	SelectDue(ctx context.Context, now time.Time, limit int) ([]*Item, error)

	// MarkSent transitions a pending item to sent and appends a log entry
	MarkSent(ctx context.Context, id uuid.UUID, provider, providerID string, at time.Time) error

	// MarkFailedTerminal transitions a pending item to failed and appends a
	// log entry. retryCount is the final attempt count to record: unchanged
	// for permanent failures, incremented past the ceiling for exhausted
	// retries, applied in the same update as the status change.
	MarkFailedTerminal(ctx context.Context, id uuid.UUID, errMsg string, retryCount int8, at time.Time) error

	// MarkFailedRetry records a transient failure: increments the retry
	// count and pushes scheduledFor to nextAttempt. No log entry is written.
	MarkFailedRetry(ctx context.Context, id uuid.UUID, errMsg string, nextAttempt time.Time) error
}

// ReporterRepository defines the read-only reporting interface consumed by
// admin tooling
type ReporterRepository interface {
	// Stats returns item counts by status
	Stats(ctx context.Context) (Stats, error)

	// ItemsByStatus returns items filtered by status (all statuses when
	// status is empty), newest first
	ItemsByStatus(ctx context.Context, status Status, limit, offset int) ([]*Item, error)

	// RecentLogs returns delivery log entries, newest first
	RecentLogs(ctx context.Context, limit int) ([]*LogEntry, error)
}
