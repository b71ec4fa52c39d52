package events

import "time"

// Event types emitted on the tutoring bus.
const (
	TypeSessionArchived  = "TUTOR_SESSION_ARCHIVED"
	TypeSummaryGenerated = "TUTOR_SUMMARY_GENERATED"
	TypeMaterialIngested = "TUTOR_MATERIAL_INGESTED"
	TypeHistoryCleared   = "TUTOR_HISTORY_CLEARED"
	TypeQuizCompleted    = "TUTOR_QUIZ_COMPLETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TUTOR_SESSION_ARCHIVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common concrete implementation.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// New builds a BaseEvent stamped with the current time.
func New(eventType string, data map[string]interface{}) Event {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
