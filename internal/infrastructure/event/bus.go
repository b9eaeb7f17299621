// Package event provides the in-process domain event bus. Application
// services publish the events an aggregate recorded once the write that
// produced them has committed.
package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/comfund/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus dispatches events synchronously to registered handlers.
// A failing or panicking handler is logged and does not affect the others.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event_bus"),
	}
}

// Publish hands every event to its handlers
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		for _, h := range b.registry.Handlers(ev.EventType()) {
			if err := b.dispatch(ctx, h, ev); err != nil {
				b.logger.Error("Event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("aggregate_id", ev.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}

// Subscribe registers handler. Without explicit event types the handler's
// own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start marks the bus as running
func (b *InMemoryEventBus) Start(context.Context) error {
	b.running.Store(true)
	b.logger.Info("Event bus started")
	return nil
}

// Stop marks the bus as stopped. Dispatch is synchronous so nothing is in flight.
func (b *InMemoryEventBus) Stop(context.Context) error {
	b.running.Store(false)
	b.logger.Info("Event bus stopped")
	return nil
}

// IsRunning reports whether Start has been called without a matching Stop
func (b *InMemoryEventBus) IsRunning() bool {
	return b.running.Load()
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// HandlerFunc adapts a function to shared.EventHandler
type HandlerFunc struct {
	Types []string
	Fn    func(ctx context.Context, ev shared.DomainEvent) error
}

// Handle implements shared.EventHandler
func (h *HandlerFunc) Handle(ctx context.Context, ev shared.DomainEvent) error {
	return h.Fn(ctx, ev)
}

// EventTypes implements shared.EventHandler
func (h *HandlerFunc) EventTypes() []string {
	return h.Types
}

// PublishPending publishes and clears the events recorded by aggregate
func PublishPending(ctx context.Context, pub shared.EventPublisher, aggregate shared.AggregateRoot) error {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	aggregate.ClearDomainEvents()
	return pub.Publish(ctx, events...)
}
