package notification

import "errors"

var (
	// ErrUnknownKind is returned for a kind outside the closed set
	ErrUnknownKind = errors.New("unknown notification kind")

	// ErrMissingField is returned when a kind's required payload field is absent
	ErrMissingField = errors.New("missing payload field")

	// ErrMalformedField is returned when a payload field has the wrong type
	ErrMalformedField = errors.New("malformed payload field")

	// ErrInvalidRecipient is returned when the recipient is not a valid address
	ErrInvalidRecipient = errors.New("invalid recipient address")

	// ErrSenderNil is returned when a nil email sender is provided
	ErrSenderNil = errors.New("email sender cannot be nil")
)
