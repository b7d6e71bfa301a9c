// Package pgstore implements the queue repository contracts on PostgreSQL
// using pgx/v5. Terminal status updates and their delivery log entries are
// written in a single transaction so logs never disagree with item status.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intentionalhq/notifier/pkg/queue"
)

// Storage implements queue.EnqueuerRepository, queue.DispatcherRepository,
// and queue.ReporterRepository backed by PostgreSQL
type Storage struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed queue storage
func New(pool *pgxpool.Pool) (*Storage, error) {
	if pool == nil {
		return nil, errors.New("pgstore: pool cannot be nil")
	}
	return &Storage{pool: pool}, nil
}

const itemColumns = `id, recipient, recipient_name, recipient_ref, subject, kind, payload,
	status, priority, scheduled_for, retry_count, sent_at, failed_at, last_error,
	created_at, updated_at`

// CreateItem implements queue.EnqueuerRepository
func (s *Storage) CreateItem(ctx context.Context, item *queue.Item) error {
	payload, err := marshalPayload(item.Payload)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO notification_queue (
			id, recipient, recipient_name, recipient_ref, subject, kind, payload,
			status, priority, scheduled_for, retry_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		item.ID, item.Recipient, nullable(item.RecipientName), nullable(item.RecipientRef),
		item.Subject, item.Kind, payload, item.Status, item.Priority,
		item.ScheduledFor, item.RetryCount, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("pgstore: insert item: %w", err)
	}
	return nil
}

// CreateItems implements queue.EnqueuerRepository using a single batch
func (s *Storage) CreateItems(ctx context.Context, items []*queue.Item) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		payload, err := marshalPayload(item.Payload)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO notification_queue (
				id, recipient, recipient_name, recipient_ref, subject, kind, payload,
				status, priority, scheduled_for, retry_count, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			item.ID, item.Recipient, nullable(item.RecipientName), nullable(item.RecipientRef),
			item.Subject, item.Kind, payload, item.Status, item.Priority,
			item.ScheduledFor, item.RetryCount, item.CreatedAt, item.UpdatedAt,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("pgstore: batch insert: %w", err)
		}
	}
	return nil
}

// SelectDue implements queue.DispatcherRepository
func (s *Storage) SelectDue(ctx context.Context, now time.Time, limit int) ([]*queue.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM notification_queue
		WHERE status = 'pending' AND scheduled_for <= $1
		ORDER BY priority ASC, scheduled_for ASC
		LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("pgstore: select due: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// MarkSent implements queue.DispatcherRepository
func (s *Storage) MarkSent(ctx context.Context, id uuid.UUID, provider, providerID string, at time.Time) error {
	return s.terminal(ctx, id, func(ctx context.Context, tx pgx.Tx, item *queue.Item) error {
		tag, err := tx.Exec(ctx, `
			UPDATE notification_queue
			SET status = 'sent', sent_at = $2, updated_at = $2
			WHERE id = $1 AND status = 'pending'`,
			id, at,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return queue.ErrItemTerminal
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO notification_logs (id, item_id, recipient, subject, kind, status, provider, provider_id, sent_at)
			VALUES ($1, $2, $3, $4, $5, 'sent', $6, $7, $8)`,
			uuid.New(), id, item.Recipient, item.Subject, item.Kind,
			nullable(provider), nullable(providerID), at,
		)
		return err
	})
}

// MarkFailedTerminal implements queue.DispatcherRepository
func (s *Storage) MarkFailedTerminal(ctx context.Context, id uuid.UUID, errMsg string, retryCount int8, at time.Time) error {
	return s.terminal(ctx, id, func(ctx context.Context, tx pgx.Tx, item *queue.Item) error {
		tag, err := tx.Exec(ctx, `
			UPDATE notification_queue
			SET status = 'failed', failed_at = $2, last_error = $3, retry_count = $4, updated_at = $2
			WHERE id = $1 AND status = 'pending'`,
			id, at, errMsg, retryCount,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return queue.ErrItemTerminal
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO notification_logs (id, item_id, recipient, subject, kind, status, error, sent_at)
			VALUES ($1, $2, $3, $4, $5, 'failed', $6, $7)`,
			uuid.New(), id, item.Recipient, item.Subject, item.Kind, errMsg, at,
		)
		return err
	})
}

// MarkFailedRetry implements queue.DispatcherRepository. GREATEST keeps
// scheduled_for monotonically non-decreasing; no log entry is written for
// non-terminal attempts.
func (s *Storage) MarkFailedRetry(ctx context.Context, id uuid.UUID, errMsg string, nextAttempt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notification_queue
		SET retry_count = retry_count + 1,
		    last_error = $2,
		    scheduled_for = GREATEST(scheduled_for, $3),
		    updated_at = now()
		WHERE id = $1 AND status = 'pending'`,
		id, errMsg, nextAttempt,
	)
	if err != nil {
		return fmt.Errorf("pgstore: mark retry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return queue.ErrItemNotFound
	}
	return nil
}

// Stats implements queue.ReporterRepository
func (s *Storage) Stats(ctx context.Context) (queue.Stats, error) {
	var stats queue.Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*)
		FROM notification_queue`,
	).Scan(&stats.Pending, &stats.Sent, &stats.Failed, &stats.Total)
	if err != nil {
		return queue.Stats{}, fmt.Errorf("pgstore: stats: %w", err)
	}
	return stats, nil
}

// ItemsByStatus implements queue.ReporterRepository
func (s *Storage) ItemsByStatus(ctx context.Context, status queue.Status, limit, offset int) ([]*queue.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM notification_queue
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		string(status), limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("pgstore: items by status: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// RecentLogs implements queue.ReporterRepository
func (s *Storage) RecentLogs(ctx context.Context, limit int) ([]*queue.LogEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, item_id, recipient, subject, kind, status,
		       COALESCE(provider, ''), COALESCE(provider_id, ''), COALESCE(error, ''), sent_at
		FROM notification_logs
		ORDER BY sent_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("pgstore: recent logs: %w", err)
	}
	defer rows.Close()

	var entries []*queue.LogEntry
	for rows.Next() {
		var e queue.LogEntry
		if err := rows.Scan(&e.ID, &e.ItemID, &e.Recipient, &e.Subject, &e.Kind,
			&e.Status, &e.Provider, &e.ProviderID, &e.Error, &e.SentAt); err != nil {
			return nil, fmt.Errorf("pgstore: scan log entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// terminal runs a terminal transition and its log append in one transaction.
// The item row is locked first so the log entry is built from consistent data.
func (s *Storage) terminal(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, tx pgx.Tx, item *queue.Item) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgstore: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	row := tx.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM notification_queue
		WHERE id = $1
		FOR UPDATE`,
		id,
	)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return queue.ErrItemNotFound
		}
		return fmt.Errorf("pgstore: load item: %w", err)
	}

	if err := fn(ctx, tx, item); err != nil {
		return fmt.Errorf("pgstore: terminal transition for %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pgstore: commit: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*queue.Item, error) {
	var (
		item          queue.Item
		recipientName *string
		recipientRef  *string
		payload       []byte
	)
	if err := row.Scan(&item.ID, &item.Recipient, &recipientName, &recipientRef,
		&item.Subject, &item.Kind, &payload, &item.Status, &item.Priority,
		&item.ScheduledFor, &item.RetryCount, &item.SentAt, &item.FailedAt,
		&item.LastError, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}

	if recipientName != nil {
		item.RecipientName = *recipientName
	}
	if recipientRef != nil {
		item.RecipientRef = *recipientRef
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &item.Payload); err != nil {
			return nil, fmt.Errorf("pgstore: decode payload: %w", err)
		}
	}
	return &item, nil
}

func scanItems(rows pgx.Rows) ([]*queue.Item, error) {
	var items []*queue.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("pgstore: scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func marshalPayload(p map[string]any) ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("pgstore: encode payload: %w", err)
	}
	return data, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
