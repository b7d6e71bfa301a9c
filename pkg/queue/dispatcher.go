package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dogmatiq/linger"
	"golang.org/x/sync/errgroup"
)

// Dispatcher is the engine behind the notification queue. Each cycle it
// selects due pending items, dispatches them in rate-limited groups through
// the configured Deliverer, and applies the resulting state transitions:
//
//	pending -> sent                            delivery succeeded
//	pending -> pending (rescheduled)           transient failure, retries left
//	pending -> failed                          permanent failure or retries exhausted
//
// Sent and failed are terminal. At most one cycle runs at a time per
// dispatcher; overlapping invocations are skipped, not queued.
type Dispatcher struct {
	repo      DispatcherRepository
	deliverer Deliverer

	batchCap        int
	rateBatchSize   int
	interGroupDelay time.Duration
	retryCeiling    int8
	retryDelay      time.Duration

	logger   *slog.Logger
	inFlight atomic.Bool
}

// NewDispatcher creates a dispatcher over the given storage and deliverer
func NewDispatcher(repo DispatcherRepository, deliverer Deliverer, opts ...DispatcherOption) (*Dispatcher, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	if deliverer == nil {
		return nil, ErrDelivererNil
	}

	options := &dispatcherOptions{
		batchCap:        10,
		rateBatchSize:   2,
		interGroupDelay: time.Second,
		retryCeiling:    3,
		retryDelay:      5 * time.Minute,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(options)
	}

	return &Dispatcher{
		repo:            repo,
		deliverer:       deliverer,
		batchCap:        options.batchCap,
		rateBatchSize:   options.rateBatchSize,
		interGroupDelay: options.interGroupDelay,
		retryCeiling:    options.retryCeiling,
		retryDelay:      options.retryDelay,
		logger:          options.logger,
	}, nil
}

// RunCycle executes one dispatch cycle. It returns ErrCycleInProgress if
// another cycle is still running, and an error if due items could not be
// selected. Per-item delivery and storage failures never abort the cycle;
// they are logged and the affected item follows its retry path.
func (d *Dispatcher) RunCycle(ctx context.Context) error {
	if !d.inFlight.CompareAndSwap(false, true) {
		return ErrCycleInProgress
	}
	defer d.inFlight.Store(false)

	now := time.Now()

	due, err := d.repo.SelectDue(ctx, now, d.batchCap)
	if err != nil {
		return fmt.Errorf("failed to select due items: %w", err)
	}

	if len(due) == 0 {
		d.logger.DebugContext(ctx, "no due notifications in queue")
		return nil
	}

	d.logger.InfoContext(ctx, "processing notification queue",
		slog.Int("due", len(due)))

	// Groups of rateBatchSize go out concurrently; a fixed pause between
	// groups keeps effective throughput within the provider's rate limit.
	for start := 0; start < len(due); start += d.rateBatchSize {
		end := min(start+d.rateBatchSize, len(due))

		var g errgroup.Group
		for _, item := range due[start:end] {
			g.Go(func() error {
				return d.dispatch(ctx, item)
			})
		}
		if err := g.Wait(); err != nil {
			d.logger.ErrorContext(ctx, "dispatch group finished with errors",
				slog.String("error", err.Error()))
		}

		if end < len(due) {
			if err := linger.Sleep(ctx, d.interGroupDelay); err != nil {
				return err
			}
		}
	}

	return nil
}

// deliver calls the deliverer, converting a panic into a transient failure
// so one misbehaving adapter call cannot take down the cycle.
func (d *Dispatcher) deliver(ctx context.Context, item *Item) (providerID string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in deliverer: %v", r)
			d.logger.ErrorContext(ctx, "deliverer panicked",
				slog.String("item_id", item.ID.String()),
				slog.String("kind", item.Kind),
				slog.Any("panic", r))
		}
	}()

	return d.deliverer.Deliver(ctx, item)
}

// dispatch delivers a single item and persists the resulting transition.
// The returned error reports storage problems only; the item itself stays
// pending in that case and is picked up again next cycle.
func (d *Dispatcher) dispatch(ctx context.Context, item *Item) error {
	d.logger.DebugContext(ctx, "dispatching notification",
		slog.String("item_id", item.ID.String()),
		slog.String("kind", item.Kind),
		slog.String("recipient", item.Recipient))

	providerID, deliverErr := d.deliver(ctx, item)
	now := time.Now()

	if deliverErr == nil {
		if err := d.repo.MarkSent(ctx, item.ID, d.deliverer.Provider(), providerID, now); err != nil {
			return fmt.Errorf("failed to mark item %s as sent: %w", item.ID, err)
		}

		d.logger.InfoContext(ctx, "notification sent",
			slog.String("item_id", item.ID.String()),
			slog.String("kind", item.Kind),
			slog.String("recipient", item.Recipient),
			slog.String("provider_id", providerID))

		return nil
	}

	if IsPermanent(deliverErr) {
		// Retrying cannot help; fail immediately without consuming budget.
		if err := d.repo.MarkFailedTerminal(ctx, item.ID, deliverErr.Error(), item.RetryCount, now); err != nil {
			return fmt.Errorf("failed to mark item %s as failed: %w", item.ID, err)
		}

		d.logger.ErrorContext(ctx, "notification failed permanently",
			slog.String("item_id", item.ID.String()),
			slog.String("kind", item.Kind),
			slog.String("error", deliverErr.Error()))

		return nil
	}

	attempts := item.RetryCount + 1
	if attempts >= d.retryCeiling {
		if err := d.repo.MarkFailedTerminal(ctx, item.ID, deliverErr.Error(), attempts, now); err != nil {
			return fmt.Errorf("failed to mark item %s as failed: %w", item.ID, err)
		}

		d.logger.ErrorContext(ctx, "notification failed after exhausting retries",
			slog.String("item_id", item.ID.String()),
			slog.String("kind", item.Kind),
			slog.Int("attempts", int(attempts)),
			slog.String("error", deliverErr.Error()))

		return nil
	}

	nextAttempt := now.Add(d.retryDelay)
	if err := d.repo.MarkFailedRetry(ctx, item.ID, deliverErr.Error(), nextAttempt); err != nil {
		return fmt.Errorf("failed to reschedule item %s: %w", item.ID, err)
	}

	d.logger.WarnContext(ctx, "notification delivery failed, rescheduled",
		slog.String("item_id", item.ID.String()),
		slog.String("kind", item.Kind),
		slog.Int("retry_count", int(attempts)),
		slog.Time("next_attempt", nextAttempt),
		slog.String("error", deliverErr.Error()))

	return nil
}
