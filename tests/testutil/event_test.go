package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandler(t *testing.T) {
	handler := NewMockEventHandler("DonationSubmitted", "DonationReviewed")
	assert.Equal(t, []string{"DonationSubmitted", "DonationReviewed"}, handler.EventTypes())
	assert.Equal(t, 0, handler.HandledCount())

	event := NewTestEvent("DonationSubmitted")
	require.NoError(t, handler.Handle(context.Background(), event))

	assert.Equal(t, 1, handler.HandledCount())
	assert.Equal(t, []string{"DonationSubmitted"}, handler.HandledTypes())
	assert.Same(t, event, handler.Handled()[0])
}

func TestMockEventHandler_SetErrorAndReset(t *testing.T) {
	handler := NewMockEventHandler()
	handler.SetError(assert.AnError)

	err := handler.Handle(context.Background(), NewTestEvent("Any"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, handler.HandledCount())

	handler.Reset()
	assert.Equal(t, 0, handler.HandledCount())
	assert.NoError(t, handler.Handle(context.Background(), NewTestEvent("Any")))
}

func TestNewTestEvent(t *testing.T) {
	event := NewTestEvent("MemberRegistered")

	assert.Equal(t, "MemberRegistered", event.EventType())
	assert.Equal(t, "TestAggregate", event.AggregateType())
	assert.NotEqual(t, event.EventID(), NewTestEvent("MemberRegistered").EventID())
}

func TestWaitForEventCount(t *testing.T) {
	handler := NewMockEventHandler()
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = handler.Handle(context.Background(), NewTestEvent("Late"))
	}()

	assert.True(t, WaitForEventCount(handler, 1, time.Second))
	assert.False(t, WaitForEventCount(handler, 2, 30*time.Millisecond))
}
