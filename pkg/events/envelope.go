package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the broker-neutral form of a domain event: routing metadata
// plus the JSON-encoded event itself.
type Envelope struct {
	OccurredAt    time.Time
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       []byte
}

// NewEnvelope wraps event, JSON-marshalling the event as the payload.
func NewEnvelope(event DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}
	return Envelope{
		ID:            event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		EventType:     event.EventType(),
		Payload:       payload,
		OccurredAt:    event.OccurredAt(),
	}, nil
}
