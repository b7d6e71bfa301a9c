package queue

import (
	"context"
	"errors"
	"fmt"
)

// Deliverer maps a queue item to a concrete provider call. Implementations
// must classify failures: wrap non-retryable ones with Permanent so the
// dispatcher can short-circuit to a terminal failure, and return everything
// else as-is to follow the retry path.
type Deliverer interface {
	// Provider returns the provider name recorded in delivery logs
	Provider() string

	// Deliver sends a single notification and returns the provider-assigned
	// message id on success
	Deliver(ctx context.Context, item *Item) (providerID string, err error)
}

// PermanentError marks a delivery failure that cannot succeed on retry,
// such as an unsupported notification kind or a malformed payload
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent delivery failure: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err as a non-retryable delivery failure
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is classified as non-retryable
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
