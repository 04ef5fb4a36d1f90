package domain

import "time"

// EventType categorizes an audit event.
type EventType string

const (
	// EventAPISuccess records a completed chat request.
	EventAPISuccess EventType = "API_SUCCESS"

	// EventAPIError records a failed provider call.
	EventAPIError EventType = "API_ERROR"

	// EventSystem records an ad-hoc operational event from a collaborator.
	EventSystem EventType = "SYSTEM"
)

// MaxAuditMessageLen is the hard cap on audit message length. Longer
// messages are stored truncated to exactly this many bytes.
const MaxAuditMessageLen = 1000

// AuditEvent is a durable, lightweight log entry describing the outcome
// of processing one request or a system-level occurrence. Its lifecycle
// is independent of InteractionRecord: an event may exist with no
// matching interaction (provider failure), but never the reverse.
type AuditEvent struct {
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	EventType EventType `json:"event_type" db:"event_type"`
	Message   string    `json:"message" db:"message"`
}

// NewAuditEvent builds an event with the message truncated to
// MaxAuditMessageLen.
func NewAuditEvent(eventType EventType, message string) *AuditEvent {
	if len(message) > MaxAuditMessageLen {
		message = message[:MaxAuditMessageLen]
	}
	return &AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Message:   message,
	}
}
