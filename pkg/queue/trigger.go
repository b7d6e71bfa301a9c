package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// CycleRunner is the part of the dispatcher the trigger drives
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// Ticker abstracts time.Ticker so tests can drive cycles deterministically
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker for the given interval
type TickerFactory func(interval time.Duration) Ticker

type wallClockTicker struct {
	t *time.Ticker
}

func (w *wallClockTicker) C() <-chan time.Time { return w.t.C }
func (w *wallClockTicker) Stop()               { w.t.Stop() }

func newWallClockTicker(interval time.Duration) Ticker {
	return &wallClockTicker{t: time.NewTicker(interval)}
}

// Trigger invokes one dispatch cycle at a fixed interval. A tick that fires
// while a cycle is still in flight is skipped rather than queued.
type Trigger struct {
	runner    CycleRunner
	interval  time.Duration
	newTicker TickerFactory
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTrigger creates a trigger for the given cycle runner
func NewTrigger(runner CycleRunner, opts ...TriggerOption) (*Trigger, error) {
	if runner == nil {
		return nil, ErrRunnerNil
	}

	options := &triggerOptions{
		interval:  time.Minute,
		newTicker: newWallClockTicker,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(options)
	}

	return &Trigger{
		runner:    runner,
		interval:  options.interval,
		newTicker: options.newTicker,
		logger:    options.logger,
	}, nil
}

// Start begins the trigger loop in the background. The first cycle runs
// immediately; subsequent cycles follow the configured interval.
func (t *Trigger) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return ErrTriggerStarted
	}

	ctx, t.cancel = context.WithCancel(ctx)

	t.wg.Add(1)
	go t.run(ctx)

	t.logger.Info("dispatch trigger started",
		slog.Duration("interval", t.interval))

	return nil
}

// Stop halts the trigger loop and waits for an in-flight cycle to finish
func (t *Trigger) Stop() error {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel == nil {
		return ErrTriggerNotStarted
	}

	cancel()
	t.wg.Wait()

	t.logger.Info("dispatch trigger stopped")
	return nil
}

// Run starts the trigger and returns a function suitable for errgroup
func (t *Trigger) Run(ctx context.Context) func() error {
	return func() error {
		if err := t.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return t.Stop()
	}
}

func (t *Trigger) run(ctx context.Context) {
	defer t.wg.Done()

	ticker := t.newTicker(t.interval)
	defer ticker.Stop()

	t.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			t.cycle(ctx)
		}
	}
}

func (t *Trigger) cycle(ctx context.Context) {
	err := t.runner.RunCycle(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrCycleInProgress):
		t.logger.Debug("dispatch cycle still in progress, skipping tick")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
	default:
		t.logger.Error("dispatch cycle failed",
			slog.String("error", err.Error()))
	}
}
