package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	type testPayload struct {
		Word   string `json:"word"`
		Action string `json:"action"`
	}

	event, err := NewEvent("test_event", testPayload{Word: "serendipity", Action: "translate"})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "test_event", event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded testPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, "serendipity", decoded.Word)
	assert.Equal(t, "translate", decoded.Action)
}

func TestNewEventRejectsUnencodablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestNewCardEnrichmentEvent(t *testing.T) {
	t.Parallel()

	event, err := NewCardEnrichmentEvent("card-1")
	require.NoError(t, err)
	assert.Equal(t, TypeCardEnrichmentRequested, event.Type)

	var payload CardEnrichmentPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, "card-1", payload.CardID)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	LastEvent    *Event
	HandlerError error
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(_ context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandler(t *testing.T) {
	t.Parallel()

	handler := &MockEventHandler{}
	event, err := NewEvent("test_type", map[string]string{"key": "value"})
	require.NoError(t, err)

	assert.NoError(t, handler.HandleEvent(context.Background(), event))
	assert.Equal(t, 1, handler.HandledCount)
	assert.Equal(t, event, handler.LastEvent)

	expectedErr := errors.New("handler error")
	handler.HandlerError = expectedErr
	assert.Equal(t, expectedErr, handler.HandleEvent(context.Background(), event))
	assert.Equal(t, 2, handler.HandledCount)
}
