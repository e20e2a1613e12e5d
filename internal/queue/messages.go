package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/acme/vapi-caller/internal/domain"
)

// CallEventType names the kind of call event.
type CallEventType string

const (
	CallEventCreated       CallEventType = "call.created"
	CallEventStatusChanged CallEventType = "call.status_changed"
	CallEventEnded         CallEventType = "call.ended"
)

// CallEvent is published whenever a call is created or observed in a new status.
type CallEvent struct {
	ID         uuid.UUID         `json:"id"`
	Type       CallEventType     `json:"type"`
	CallID     string            `json:"call_id"`
	Status     domain.CallStatus `json:"status"`
	Summary    string            `json:"summary,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewCallEvent stamps a fresh event.
func NewCallEvent(eventType CallEventType, callID string, status domain.CallStatus) CallEvent {
	return CallEvent{
		ID:         uuid.New(),
		Type:       eventType,
		CallID:     callID,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}
