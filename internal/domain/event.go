package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is an immutable user-activity record submitted for rule evaluation.
// Events are created at ingestion and never mutated afterwards.
type Event struct {
	ID         string         `json:"eventId"`
	EventType  string         `json:"eventType"`
	UserID     string         `json:"userId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// NewEvent builds a canonical event, generating the id and defaulting the
// timestamp to now (UTC) when the caller omits them.
func NewEvent(id, eventType, userID string, occurredAt time.Time, attributes map[string]any) Event {
	if id == "" {
		id = uuid.NewString()
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return Event{
		ID:         id,
		EventType:  eventType,
		UserID:     userID,
		OccurredAt: occurredAt.UTC(),
		Attributes: attributes,
	}
}

// Validate checks the event invariants: non-empty id, eventType, and userId.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: %s", ErrValidation, ErrMsgEventIDEmpty)
	}
	if e.EventType == "" {
		return fmt.Errorf("%w: %s", ErrValidation, ErrMsgEventTypeEmpty)
	}
	if e.UserID == "" {
		return fmt.Errorf("%w: %s", ErrValidation, ErrMsgUserIDEmpty)
	}
	return nil
}

// Attribute looks up an attribute on the event. The second return value
// distinguishes a missing key from an explicit null value.
func (e Event) Attribute(name string) (any, bool) {
	if e.Attributes == nil {
		return nil, false
	}
	v, ok := e.Attributes[name]
	return v, ok
}

// EventTypeDescriptor describes a known event type for the catalog endpoint.
type EventTypeDescriptor struct {
	ID          string         `json:"id"`
	Description string         `json:"description,omitempty"`
	PayloadHint map[string]any `json:"payloadHint,omitempty"`
}
