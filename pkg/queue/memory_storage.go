package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements all queue repository interfaces for testing and
// local development
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Item
	logs  []*LogEntry

	// Index for efficient due-item scans
	byStatus map[Status][]uuid.UUID
}

// NewMemoryStorage creates a new in-memory storage implementation
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items:    make(map[uuid.UUID]*Item),
		byStatus: make(map[Status][]uuid.UUID),
	}
}

// CreateItem implements EnqueuerRepository
func (ms *MemoryStorage) CreateItem(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.createLocked(item)
}

// CreateItems implements EnqueuerRepository
func (ms *MemoryStorage) CreateItems(ctx context.Context, items []*Item) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, item := range items {
		if item == nil {
			return errors.New("item cannot be nil")
		}
		if _, exists := ms.items[item.ID]; exists {
			return fmt.Errorf("item with ID %s already exists", item.ID)
		}
	}

	for _, item := range items {
		if err := ms.createLocked(item); err != nil {
			return err
		}
	}
	return nil
}

func (ms *MemoryStorage) createLocked(item *Item) error {
	if _, exists := ms.items[item.ID]; exists {
		return fmt.Errorf("item with ID %s already exists", item.ID)
	}

	// Clone to prevent external modifications
	itemCopy := cloneItem(item)
	ms.items[item.ID] = itemCopy
	ms.byStatus[item.Status] = append(ms.byStatus[item.Status], item.ID)

	return nil
}

// SelectDue implements DispatcherRepository
func (ms *MemoryStorage) SelectDue(ctx context.Context, now time.Time, limit int) ([]*Item, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	due := make([]*Item, 0, limit)
	for _, id := range ms.byStatus[StatusPending] {
		item := ms.items[id]
		if item.ScheduledFor.After(now) {
			continue
		}
		due = append(due, item)
	}

	// Lowest priority value first, earliest due time breaks ties
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].Priority != due[j].Priority {
			return due[i].Priority < due[j].Priority
		}
		return due[i].ScheduledFor.Before(due[j].ScheduledFor)
	})

	if len(due) > limit {
		due = due[:limit]
	}

	out := make([]*Item, len(due))
	for i, item := range due {
		out[i] = cloneItem(item)
	}
	return out, nil
}

// MarkSent implements DispatcherRepository
func (ms *MemoryStorage) MarkSent(ctx context.Context, id uuid.UUID, provider, providerID string, at time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, err := ms.pendingLocked(id)
	if err != nil {
		return err
	}

	sentAt := at
	item.Status = StatusSent
	item.SentAt = &sentAt
	item.UpdatedAt = at
	ms.moveStatusIndex(id, StatusPending, StatusSent)

	ms.logs = append(ms.logs, &LogEntry{
		ID:         uuid.New(),
		ItemID:     item.ID,
		Recipient:  item.Recipient,
		Subject:    item.Subject,
		Kind:       item.Kind,
		Status:     StatusSent,
		Provider:   provider,
		ProviderID: providerID,
		SentAt:     at,
	})

	return nil
}

// MarkFailedTerminal implements DispatcherRepository
func (ms *MemoryStorage) MarkFailedTerminal(ctx context.Context, id uuid.UUID, errMsg string, retryCount int8, at time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, err := ms.pendingLocked(id)
	if err != nil {
		return err
	}

	failedAt := at
	item.Status = StatusFailed
	item.FailedAt = &failedAt
	item.RetryCount = retryCount
	item.LastError = &errMsg
	item.UpdatedAt = at
	ms.moveStatusIndex(id, StatusPending, StatusFailed)

	ms.logs = append(ms.logs, &LogEntry{
		ID:        uuid.New(),
		ItemID:    item.ID,
		Recipient: item.Recipient,
		Subject:   item.Subject,
		Kind:      item.Kind,
		Status:    StatusFailed,
		Error:     errMsg,
		SentAt:    at,
	})

	return nil
}

// MarkFailedRetry implements DispatcherRepository
func (ms *MemoryStorage) MarkFailedRetry(ctx context.Context, id uuid.UUID, errMsg string, nextAttempt time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, err := ms.pendingLocked(id)
	if err != nil {
		return err
	}

	// A retry can only push the item further into the future
	if nextAttempt.Before(item.ScheduledFor) {
		return fmt.Errorf("item %s: next attempt %s precedes current schedule %s",
			id, nextAttempt, item.ScheduledFor)
	}

	item.RetryCount++
	item.LastError = &errMsg
	item.ScheduledFor = nextAttempt
	item.UpdatedAt = time.Now()

	return nil
}

// Stats implements ReporterRepository
func (ms *MemoryStorage) Stats(ctx context.Context) (Stats, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	stats := Stats{
		Pending: int64(len(ms.byStatus[StatusPending])),
		Sent:    int64(len(ms.byStatus[StatusSent])),
		Failed:  int64(len(ms.byStatus[StatusFailed])),
	}
	stats.Total = stats.Pending + stats.Sent + stats.Failed
	return stats, nil
}

// ItemsByStatus implements ReporterRepository
func (ms *MemoryStorage) ItemsByStatus(ctx context.Context, status Status, limit, offset int) ([]*Item, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	matched := make([]*Item, 0)
	for _, item := range ms.items {
		if status != "" && item.Status != status {
			continue
		}
		matched = append(matched, item)
	}

	// Newest first
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []*Item{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*Item, len(matched))
	for i, item := range matched {
		out[i] = cloneItem(item)
	}
	return out, nil
}

// RecentLogs implements ReporterRepository
func (ms *MemoryStorage) RecentLogs(ctx context.Context, limit int) ([]*LogEntry, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	n := len(ms.logs)
	if limit <= 0 || limit > n {
		limit = n
	}

	// Logs are appended in order, so the newest are at the tail
	out := make([]*LogEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		entryCopy := *ms.logs[i]
		out = append(out, &entryCopy)
	}
	return out, nil
}

// GetItem returns a copy of the item with the given id, for tests
func (ms *MemoryStorage) GetItem(id uuid.UUID) (*Item, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[id]
	if !exists {
		return nil, ErrItemNotFound
	}
	return cloneItem(item), nil
}

func (ms *MemoryStorage) pendingLocked(id uuid.UUID) (*Item, error) {
	item, exists := ms.items[id]
	if !exists {
		return nil, ErrItemNotFound
	}
	if item.Status.Terminal() {
		return nil, fmt.Errorf("item %s: %w", id, ErrItemTerminal)
	}
	return item, nil
}

func (ms *MemoryStorage) moveStatusIndex(id uuid.UUID, from, to Status) {
	idx := ms.byStatus[from]
	for i, candidate := range idx {
		if candidate == id {
			ms.byStatus[from] = append(idx[:i], idx[i+1:]...)
			break
		}
	}
	ms.byStatus[to] = append(ms.byStatus[to], id)
}

func cloneItem(item *Item) *Item {
	itemCopy := *item
	if item.Payload != nil {
		payload := make(map[string]any, len(item.Payload))
		for k, v := range item.Payload {
			payload[k] = v
		}
		itemCopy.Payload = payload
	}
	return &itemCopy
}
