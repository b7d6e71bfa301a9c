package queue

import (
	"log/slog"
	"time"
)

// TriggerOption is a functional option for configuring a Trigger
type TriggerOption func(*triggerOptions)

type triggerOptions struct {
	interval  time.Duration
	newTicker TickerFactory
	logger    *slog.Logger
}

// WithInterval sets the trigger frequency
func WithInterval(d time.Duration) TriggerOption {
	return func(o *triggerOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithTickerFactory replaces the wall-clock ticker, letting tests drive
// cycles manually
func WithTickerFactory(f TickerFactory) TriggerOption {
	return func(o *triggerOptions) {
		if f != nil {
			o.newTicker = f
		}
	}
}

// WithTriggerLogger sets the logger used by the trigger
func WithTriggerLogger(logger *slog.Logger) TriggerOption {
	return func(o *triggerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
