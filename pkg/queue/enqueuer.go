package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Input carries the producer-supplied fields for a new queue item.
// Payload is opaque to the queue; the delivery adapter interprets it
// according to Kind.
type Input struct {
	Recipient     string         `json:"recipient"`
	RecipientName string         `json:"recipient_name,omitempty"`
	RecipientRef  string         `json:"recipient_ref,omitempty"`
	Subject       string         `json:"subject"`
	Kind          string         `json:"kind"`
	Payload       map[string]any `json:"payload,omitempty"`
	Priority      Priority       `json:"priority,omitempty"`
	ScheduledFor  *time.Time     `json:"scheduled_for,omitempty"`
}

// Validate checks the producer-facing invariants. Zero priority means
// "use the default" and is filled in by the enqueuer, not rejected here.
func (in Input) Validate() error {
	if in.Recipient == "" {
		return ErrRecipientRequired
	}
	if in.Subject == "" {
		return ErrSubjectRequired
	}
	if in.Kind == "" {
		return ErrKindRequired
	}
	if in.Priority != 0 && !in.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// Enqueuer handles notification submission from producers
type Enqueuer struct {
	repo            EnqueuerRepository
	defaultPriority Priority
	logger          *slog.Logger
}

// NewEnqueuer creates a new Enqueuer
func NewEnqueuer(repo EnqueuerRepository, opts ...EnqueuerOption) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &enqueuerOptions{
		defaultPriority: PriorityDefault,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(options)
	}

	return &Enqueuer{
		repo:            repo,
		defaultPriority: options.defaultPriority,
		logger:          options.logger,
	}, nil
}

// Enqueue validates and persists a single notification request as pending.
// Validation failures are synchronous and nothing is persisted.
func (e *Enqueuer) Enqueue(ctx context.Context, input Input) (*Item, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	item := e.buildItem(input, time.Now())

	if err := e.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to enqueue %q to %q: %w", item.Kind, item.Recipient, err)
	}

	e.logger.InfoContext(ctx, "notification queued",
		slog.String("item_id", item.ID.String()),
		slog.String("kind", item.Kind),
		slog.String("recipient", item.Recipient))

	return item, nil
}

// EnqueueBatch validates and persists multiple notification requests in one
// storage call, used for fan-out notifications. All inputs are validated
// before anything is written; an empty slice is a no-op.
func (e *Enqueuer) EnqueueBatch(ctx context.Context, inputs []Input) ([]*Item, error) {
	if len(inputs) == 0 {
		return []*Item{}, nil
	}

	for i, input := range inputs {
		if err := input.Validate(); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}

	now := time.Now()
	items := make([]*Item, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, e.buildItem(input, now))
	}

	if err := e.repo.CreateItems(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to enqueue batch of %d: %w", len(items), err)
	}

	e.logger.InfoContext(ctx, "notification batch queued",
		slog.Int("count", len(items)))

	return items, nil
}

func (e *Enqueuer) buildItem(input Input, now time.Time) *Item {
	priority := input.Priority
	if priority == 0 {
		priority = e.defaultPriority
	}

	scheduledFor := now
	if input.ScheduledFor != nil {
		scheduledFor = *input.ScheduledFor
	}

	return &Item{
		ID:            uuid.New(),
		Recipient:     input.Recipient,
		RecipientName: input.RecipientName,
		RecipientRef:  input.RecipientRef,
		Subject:       input.Subject,
		Kind:          input.Kind,
		Payload:       input.Payload,
		Status:        StatusPending,
		Priority:      priority,
		ScheduledFor:  scheduledFor,
		RetryCount:    0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
