package notification

import (
	"fmt"
	"strconv"
)

// Payload is the opaque key-value data attached to a queue item. Each kind
// requires its own subset of fields; accessors report missing or malformed
// values so the deliverer can classify them as permanent failures.
type Payload map[string]any

// String returns the required string field for key
func (p Payload) String(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrMalformedField, key, v)
	}
	if s == "" {
		return "", fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	return s, nil
}

// OptionalString returns the field for key, or empty when absent
func (p Payload) OptionalString(key string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Number returns the required numeric field for key. JSON decoding yields
// float64, but int values set directly by in-process producers are accepted
// too.
func (p Payload) Number(key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrMalformedField, key)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %q must be a number, got %T", ErrMalformedField, key, v)
	}
}
