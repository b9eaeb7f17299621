package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewMockEventHandler creates a handler for eventTypes; none means every event.
func NewMockEventHandler(eventTypes ...string) *MockEventHandler {
	return &MockEventHandler{eventTypes: eventTypes}
}

// EventTypes returns the event types this handler subscribes to.
func (h *MockEventHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records event and returns the configured error.
func (h *MockEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the recorded events.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]shared.DomainEvent, len(h.handled))
	copy(result, h.handled)
	return result
}

// HandledTypes returns the type of each recorded event in order.
func (h *MockEventHandler) HandledTypes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, len(h.handled))
	for i, e := range h.handled {
		types[i] = e.EventType()
	}
	return types
}

// HandledCount returns the number of recorded events.
func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// SetError sets the error to return from Handle.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Reset clears recorded events and the configured error.
func (h *MockEventHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = nil
	h.err = nil
}

// TestEvent is a minimal domain event.
type TestEvent struct {
	shared.BaseDomainEvent
	Data string
}

// NewTestEvent creates a TestEvent of eventType on a fresh aggregate.
func NewTestEvent(eventType string) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test-data",
	}
}

// WaitForEventCount waits until handler has recorded at least count events.
func WaitForEventCount(handler *MockEventHandler, count int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if handler.HandledCount() >= count {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return handler.HandledCount() >= count
}
