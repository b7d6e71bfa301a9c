package queue

import "errors"

// Common errors
var (
	// ErrRepositoryNil is returned when a nil repository is provided
	ErrRepositoryNil = errors.New("repository cannot be nil")

	// ErrDelivererNil is returned when a nil deliverer is provided
	ErrDelivererNil = errors.New("deliverer cannot be nil")

	// ErrRecipientRequired is returned when enqueue input has no recipient
	ErrRecipientRequired = errors.New("recipient is required")

	// ErrSubjectRequired is returned when enqueue input has no subject
	ErrSubjectRequired = errors.New("subject is required")

	// ErrKindRequired is returned when enqueue input has no notification kind
	ErrKindRequired = errors.New("notification kind is required")

	// ErrInvalidPriority is returned when priority is outside valid range
	ErrInvalidPriority = errors.New("priority must be between 1 and 10")

	// ErrRunnerNil is returned when a nil cycle runner is provided
	ErrRunnerNil = errors.New("cycle runner cannot be nil")

	// ErrCycleInProgress is returned when a dispatch cycle is requested while
	// another is still running
	ErrCycleInProgress = errors.New("dispatch cycle already in progress")

	// ErrTriggerStarted is returned when Start is called on a running trigger
	ErrTriggerStarted = errors.New("trigger already started")

	// ErrTriggerNotStarted is returned when Stop is called before Start
	ErrTriggerNotStarted = errors.New("trigger not started")

	// ErrItemNotFound is returned by storage when an item id is unknown
	ErrItemNotFound = errors.New("queue item not found")

	// ErrItemTerminal is returned by storage when updating a sent/failed item
	ErrItemTerminal = errors.New("queue item is in a terminal state")
)
