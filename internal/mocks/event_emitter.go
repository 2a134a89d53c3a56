package mocks

import (
	"context"
	"sync"

	"github.com/xtlz/xtlz-english/internal/events"
)

var _ events.EventEmitter = (*MockEventEmitter)(nil)

// MockEventEmitter records emitted events instead of dispatching them.
type MockEventEmitter struct {
	Err error

	mu     sync.Mutex
	events []*events.Event
}

// EmitEvent implements events.EventEmitter.
func (m *MockEventEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

// Events returns the emitted events, in order.
func (m *MockEventEmitter) Events() []*events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*events.Event(nil), m.events...)
}
