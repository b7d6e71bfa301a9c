package queue

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the delivery status of a queue item
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Valid checks if the status is one of the known states
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transitions
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Priority represents dispatch priority (1-10, lower dispatches first)
// Using int8 provides sufficient range while keeping memory footprint minimal
type Priority int8

// Priority constants
const (
	PriorityUrgent  Priority = 1
	PriorityHigh    Priority = 3
	PriorityMedium  Priority = 5
	PriorityLow     Priority = 8
	PriorityLowest  Priority = 10
	PriorityDefault Priority = PriorityMedium
)

// Valid checks if the priority is within valid range
func (p Priority) Valid() bool {
	return p >= PriorityUrgent && p <= PriorityLowest
}

// Item represents one outbound notification request in the queue
type Item struct {
	ID            uuid.UUID      `json:"id"`
	Recipient     string         `json:"recipient"`
	RecipientName string         `json:"recipient_name,omitempty"`
	RecipientRef  string         `json:"recipient_ref,omitempty"`
	Subject       string         `json:"subject"`
	Kind          string         `json:"kind"`
	Payload       map[string]any `json:"payload,omitempty"`
	Status        Status         `json:"status"`
	Priority      Priority       `json:"priority"`
	ScheduledFor  time.Time      `json:"scheduled_for"`
	RetryCount    int8           `json:"retry_count"`
	SentAt        *time.Time     `json:"sent_at,omitempty"`
	FailedAt      *time.Time     `json:"failed_at,omitempty"`
	LastError     *string        `json:"last_error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// LogEntry is the immutable record of one terminal delivery attempt.
// Written exactly once, in the same unit of work as the item's terminal
// status update, and never modified afterwards.
type LogEntry struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	Recipient  string    `json:"recipient"`
	Subject    string    `json:"subject"`
	Kind       string    `json:"kind"`
	Status     Status    `json:"status"`
	Provider   string    `json:"provider,omitempty"`
	ProviderID string    `json:"provider_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

// Stats holds queue item counts by status
type Stats struct {
	Pending int64 `json:"pending"`
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Total   int64 `json:"total"`
}
