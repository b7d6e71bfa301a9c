package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentionalhq/notifier/pkg/queue"
)

func newItem(priority queue.Priority, scheduledFor time.Time) *queue.Item {
	now := time.Now()
	return &queue.Item{
		ID:           uuid.New(),
		Recipient:    "user@example.com",
		Subject:      "Reminder",
		Kind:         "daily_checkin",
		Status:       queue.StatusPending,
		Priority:     priority,
		ScheduledFor: scheduledFor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryStorage_CreateItem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := queue.NewMemoryStorage()

	item := newItem(queue.PriorityDefault, time.Now())
	require.NoError(t, store.CreateItem(ctx, item))

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := store.CreateItem(ctx, item)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("stored copy is isolated from caller", func(t *testing.T) {
		item.Payload = map[string]any{"mutated": true}

		got, err := store.GetItem(item.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Payload)
	})
}

func TestMemoryStorage_SelectDue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := queue.NewMemoryStorage()
	now := time.Now()

	future := newItem(queue.PriorityUrgent, now.Add(time.Hour))
	lateHigh := newItem(queue.PriorityHigh, now.Add(-time.Minute))
	earlyHigh := newItem(queue.PriorityHigh, now.Add(-2*time.Minute))
	urgent := newItem(queue.PriorityUrgent, now.Add(-time.Second))
	low := newItem(queue.PriorityLow, now.Add(-time.Hour))

	require.NoError(t, store.CreateItems(ctx, []*queue.Item{future, lateHigh, earlyHigh, urgent, low}))

	t.Run("orders by priority then schedule", func(t *testing.T) {
		due, err := store.SelectDue(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, due, 4, "future item is not due")

		assert.Equal(t, urgent.ID, due[0].ID)
		assert.Equal(t, earlyHigh.ID, due[1].ID)
		assert.Equal(t, lateHigh.ID, due[2].ID)
		assert.Equal(t, low.ID, due[3].ID)
	})

	t.Run("respects limit", func(t *testing.T) {
		due, err := store.SelectDue(ctx, now, 2)
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, urgent.ID, due[0].ID)
	})

	t.Run("item scheduled exactly now is due", func(t *testing.T) {
		exact := newItem(queue.PriorityLowest, now)
		require.NoError(t, store.CreateItem(ctx, exact))

		due, err := store.SelectDue(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, due, 5)
		assert.Equal(t, exact.ID, due[4].ID)
	})
}

func TestMemoryStorage_MarkSent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := queue.NewMemoryStorage()
	item := newItem(queue.PriorityDefault, time.Now())
	require.NoError(t, store.CreateItem(ctx, item))

	at := time.Now()
	require.NoError(t, store.MarkSent(ctx, item.ID, "postmark", "pm-1", at))

	got, err := store.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusSent, got.Status)
	require.NotNil(t, got.SentAt)
	assert.True(t, got.SentAt.Equal(at))

	logs, err := store.RecentLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, item.ID, logs[0].ItemID)
	assert.Equal(t, "postmark", logs[0].Provider)
	assert.Equal(t, "pm-1", logs[0].ProviderID)

	t.Run("terminal item is immutable", func(t *testing.T) {
		assert.ErrorIs(t, store.MarkSent(ctx, item.ID, "postmark", "pm-2", time.Now()), queue.ErrItemTerminal)
		assert.ErrorIs(t, store.MarkFailedTerminal(ctx, item.ID, "late", 0, time.Now()), queue.ErrItemTerminal)
		assert.ErrorIs(t, store.MarkFailedRetry(ctx, item.ID, "late", time.Now().Add(time.Hour)), queue.ErrItemTerminal)

		logs, err := store.RecentLogs(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, logs, 1, "rejected transitions must not append logs")
	})

	t.Run("unknown item", func(t *testing.T) {
		assert.ErrorIs(t, store.MarkSent(ctx, uuid.New(), "postmark", "pm-3", time.Now()), queue.ErrItemNotFound)
	})
}

func TestMemoryStorage_MarkFailedTerminal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := queue.NewMemoryStorage()
	item := newItem(queue.PriorityDefault, time.Now())
	require.NoError(t, store.CreateItem(ctx, item))

	at := time.Now()
	require.NoError(t, store.MarkFailedTerminal(ctx, item.ID, "mailbox does not exist", 3, at))

	got, err := store.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusFailed, got.Status)
	assert.EqualValues(t, 3, got.RetryCount)
	require.NotNil(t, got.FailedAt)
	require.NotNil(t, got.LastError)
	assert.Equal(t, "mailbox does not exist", *got.LastError)

	logs, err := store.RecentLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, queue.StatusFailed, logs[0].Status)
	assert.Equal(t, "mailbox does not exist", logs[0].Error)
}

func TestMemoryStorage_MarkFailedRetry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := queue.NewMemoryStorage()
	scheduled := time.Now()
	item := newItem(queue.PriorityDefault, scheduled)
	require.NoError(t, store.CreateItem(ctx, item))

	next := scheduled.Add(5 * time.Minute)
	require.NoError(t, store.MarkFailedRetry(ctx, item.ID, "provider 503", next))

	got, err := store.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusPending, got.Status, "retry keeps the item pending")
	assert.EqualValues(t, 1, got.RetryCount)
	assert.True(t, got.ScheduledFor.Equal(next))

	logs, err := store.RecentLogs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, logs, "retries are not logged")

	t.Run("schedule cannot move backwards", func(t *testing.T) {
		err := store.MarkFailedRetry(ctx, item.ID, "again", scheduled)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "precedes current schedule")
	})
}

func TestMemoryStorage_Stats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := queue.NewMemoryStorage()

	a := newItem(queue.PriorityDefault, time.Now())
	b := newItem(queue.PriorityDefault, time.Now())
	c := newItem(queue.PriorityDefault, time.Now())
	require.NoError(t, store.CreateItems(ctx, []*queue.Item{a, b, c}))

	require.NoError(t, store.MarkSent(ctx, a.ID, "dev", "1", time.Now()))
	require.NoError(t, store.MarkFailedTerminal(ctx, b.ID, "boom", 3, time.Now()))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, queue.Stats{Pending: 1, Sent: 1, Failed: 1, Total: 3}, stats)
}

func TestMemoryStorage_ItemsByStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := queue.NewMemoryStorage()

	base := time.Now()
	items := make([]*queue.Item, 5)
	for i := range items {
		items[i] = newItem(queue.PriorityDefault, base)
		items[i].CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.CreateItem(ctx, items[i]))
	}
	require.NoError(t, store.MarkSent(ctx, items[4].ID, "dev", "1", time.Now()))

	t.Run("filter by status", func(t *testing.T) {
		got, err := store.ItemsByStatus(ctx, queue.StatusSent, 10, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, items[4].ID, got[0].ID)
	})

	t.Run("empty status returns all, newest first", func(t *testing.T) {
		got, err := store.ItemsByStatus(ctx, "", 10, 0)
		require.NoError(t, err)
		require.Len(t, got, 5)
		assert.Equal(t, items[4].ID, got[0].ID)
		assert.Equal(t, items[0].ID, got[4].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		got, err := store.ItemsByStatus(ctx, "", 2, 1)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, items[3].ID, got[0].ID)
		assert.Equal(t, items[2].ID, got[1].ID)
	})

	t.Run("offset past the end", func(t *testing.T) {
		got, err := store.ItemsByStatus(ctx, "", 10, 100)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMemoryStorage_RecentLogs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := queue.NewMemoryStorage()

	ids := make([]uuid.UUID, 3)
	for i := range ids {
		item := newItem(queue.PriorityDefault, time.Now())
		require.NoError(t, store.CreateItem(ctx, item))
		require.NoError(t, store.MarkSent(ctx, item.ID, "dev", "m", time.Now()))
		ids[i] = item.ID
	}

	logs, err := store.RecentLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, ids[2], logs[0].ItemID, "newest first")
	assert.Equal(t, ids[1], logs[1].ItemID)
}
