package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChangeBroadcaster relays change notifications between service instances
type ChangeBroadcaster interface {
	// Publish sends payload to every other instance
	Publish(ctx context.Context, payload []byte) error
	// Run delivers payloads from other instances to fn until ctx is done
	Run(ctx context.Context, fn func(payload []byte)) error
}

type envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// RedisChangeBroadcaster uses Redis Pub/Sub. Each instance tags what it
// publishes with its own origin ID and ignores those messages on receipt.
type RedisChangeBroadcaster struct {
	client  redis.UniversalClient
	channel string
	origin  string
	logger  *zap.Logger
}

// NewRedisChangeBroadcaster creates a broadcaster on channel
func NewRedisChangeBroadcaster(client redis.UniversalClient, channel string, logger *zap.Logger) *RedisChangeBroadcaster {
	return &RedisChangeBroadcaster{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger.Named("change_broadcaster"),
	}
}

// Publish implements ChangeBroadcaster. payload must be valid JSON.
func (b *RedisChangeBroadcaster) Publish(ctx context.Context, payload []byte) error {
	data, err := json.Marshal(envelope{Origin: b.origin, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Run implements ChangeBroadcaster
func (b *RedisChangeBroadcaster) Run(ctx context.Context, fn func(payload []byte)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.logger.Info("Subscribed to change channel", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("Change channel closed")
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn("Dropping malformed change message", zap.Error(err))
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			fn(env.Payload)
		}
	}
}

var _ ChangeBroadcaster = (*RedisChangeBroadcaster)(nil)

// LocalChangeBroadcaster is used when Redis is disabled. With a single
// instance there is nobody to relay to, so Publish is a no-op.
type LocalChangeBroadcaster struct {
	mu        sync.Mutex
	published int
}

// Publish implements ChangeBroadcaster
func (b *LocalChangeBroadcaster) Publish(context.Context, []byte) error {
	b.mu.Lock()
	b.published++
	b.mu.Unlock()
	return nil
}

// Run implements ChangeBroadcaster by waiting for ctx
func (b *LocalChangeBroadcaster) Run(ctx context.Context, _ func([]byte)) error {
	<-ctx.Done()
	return nil
}

// Published returns how many payloads were offered
func (b *LocalChangeBroadcaster) Published() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published
}

var _ ChangeBroadcaster = (*LocalChangeBroadcaster)(nil)
