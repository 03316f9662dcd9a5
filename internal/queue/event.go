// Package queue defines message payloads exchanged over the message broker.
package queue

// StudyEventQueueName is the durable queue all study activity events are
// published to. A single queue with a type discriminator keeps the
// consumer simple; downstream systems that care about one event kind
// filter on Type.
const StudyEventQueueName = "study.events"

// Event types carried in StudyEvent.Type.
const (
	EventFeedbackSubmitted = "feedback.submitted"
	EventUploadReceived    = "upload.received"
	EventMessageSent       = "message.sent"
)

// StudyEvent is published whenever a participant submits weekly
// feedback, uploads a photo batch, or either party sends a message.
// It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type StudyEvent struct {
	Type       string `json:"type"`                  // one of the Event* constants
	UserID     uint64 `json:"user_id"`               // acting user
	ProfileID  uint64 `json:"profile_id,omitempty"`  // profile the activity belongs to (zero for admin senders)
	WeekNumber int    `json:"week_number,omitempty"` // study week, when the event is week-scoped
	Count      int    `json:"count,omitempty"`       // batch size for upload events
	OccurredAt string `json:"occurred_at"`           // RFC 3339 timestamp
}
