package queue

import (
	"log/slog"
	"time"
)

// DispatcherOption is a functional option for configuring a Dispatcher
type DispatcherOption func(*dispatcherOptions)

type dispatcherOptions struct {
	batchCap        int
	rateBatchSize   int
	interGroupDelay time.Duration
	retryCeiling    int8
	retryDelay      time.Duration
	logger          *slog.Logger
}

// WithBatchCap bounds the number of items pulled per cycle
func WithBatchCap(n int) DispatcherOption {
	return func(o *dispatcherOptions) {
		if n > 0 {
			o.batchCap = n
		}
	}
}

// WithRateBatchSize sets how many deliveries go out concurrently before the
// inter-group pause
func WithRateBatchSize(n int) DispatcherOption {
	return func(o *dispatcherOptions) {
		if n > 0 {
			o.rateBatchSize = n
		}
	}
}

// WithInterGroupDelay sets the pause between delivery groups
func WithInterGroupDelay(d time.Duration) DispatcherOption {
	return func(o *dispatcherOptions) {
		if d >= 0 {
			o.interGroupDelay = d
		}
	}
}

// WithRetryCeiling sets the total attempts before terminal failure (1-10)
// Capped at 10 to prevent indefinitely deferred failures
func WithRetryCeiling(n int8) DispatcherOption {
	return func(o *dispatcherOptions) {
		if n >= 1 && n <= 10 {
			o.retryCeiling = n
		}
	}
}

// WithRetryDelay sets the fixed backoff added when rescheduling a transient
// failure
func WithRetryDelay(d time.Duration) DispatcherOption {
	return func(o *dispatcherOptions) {
		if d > 0 {
			o.retryDelay = d
		}
	}
}

// WithDispatcherLogger sets the logger used by the dispatcher
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(o *dispatcherOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// FromConfig applies the engine configuration to the dispatcher
func FromConfig(cfg Config) DispatcherOption {
	return func(o *dispatcherOptions) {
		WithBatchCap(cfg.BatchCap)(o)
		WithRateBatchSize(cfg.RateBatchSize)(o)
		WithInterGroupDelay(cfg.InterGroupDelay)(o)
		WithRetryCeiling(cfg.RetryCeiling)(o)
		WithRetryDelay(cfg.RetryDelay)(o)
	}
}
