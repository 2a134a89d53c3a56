package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TypeCardEnrichmentRequested is emitted when a card was saved without a
// translation and the learner asked for it to be filled in automatically.
const TypeCardEnrichmentRequested = "card.enrichment_requested"

// CardEnrichmentPayload is the payload of a TypeCardEnrichmentRequested event.
type CardEnrichmentPayload struct {
	CardID string `json:"card_id"`
}

// Event represents a request for background work.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type names the kind of work requested
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the given type and payload.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewCardEnrichmentEvent creates a TypeCardEnrichmentRequested event for cardID.
func NewCardEnrichmentEvent(cardID string) (*Event, error) {
	return NewEvent(TypeCardEnrichmentRequested, CardEnrichmentPayload{CardID: cardID})
}

// EventHandler processes events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter publishes events to whoever handles them.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
