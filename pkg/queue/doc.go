// Package queue provides a repository-agnostic outbound notification queue
// with deferred scheduling, prioritisation, and rate-limited dispatch.
//
// The package is organised around three main components:
//
//   - Enqueuer: accepts notification requests from producers
//   - Dispatcher: selects due work and drives it through a Deliverer
//   - Trigger: fires dispatch cycles at a fixed interval
//
// Components interact only through a set of small repository interfaces,
// keeping the engine decoupled from persistence. Back the queue with any
// storage engine by implementing EnqueuerRepository, DispatcherRepository,
// and ReporterRepository; the pgstore subpackage provides the PostgreSQL
// implementation and MemoryStorage covers tests and local development.
//
// # Delivery guarantees
//
// Delivery is at-least-once. An item stays pending until a dispatch attempt
// reaches a terminal outcome: sent on success, failed on a permanent error
// or once the retry ceiling is exhausted. Transient failures reschedule the
// item with a fixed backoff. A provider call that times out after actually
// succeeding can therefore produce a duplicate send on retry; producers
// that cannot tolerate duplicates must de-duplicate before enqueueing.
//
// Exactly one LogEntry is written per terminal transition, atomically with
// the status update, and never for intermediate retries.
//
// # Concurrency
//
// A single dispatcher instance is assumed. The dispatcher guards cycles
// with a compare-and-swap flag, so a trigger tick that fires mid-cycle is
// skipped rather than queued. Within a cycle, items go out in groups of
// RateBatchSize concurrent deliveries with a fixed pause between groups,
// matching the delivery provider's rate limit.
//
// # Usage
//
//	store := queue.NewMemoryStorage()
//
//	enq, _ := queue.NewEnqueuer(store)
//	item, err := enq.Enqueue(ctx, queue.Input{
//	    Recipient: "user@example.com",
//	    Subject:   "Daily Check-In Reminder",
//	    Kind:      "daily_checkin",
//	    Payload:   map[string]any{"name": "Alex"},
//	})
//
//	d, _ := queue.NewDispatcher(store, deliverer)
//	trg, _ := queue.NewTrigger(d, queue.WithInterval(time.Minute))
//	_ = trg.Start(ctx)
//
// # Error Handling
//
// Package-level sentinel errors (e.g. ErrInvalidPriority,
// ErrCycleInProgress) signal violations of business invariants and can be
// checked with errors.Is. Deliverers classify failures with Permanent;
// anything else follows the retry path.
package queue
