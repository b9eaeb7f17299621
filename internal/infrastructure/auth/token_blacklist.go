package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes tokens before they expire
type TokenBlacklist interface {
	// Revoke blacklists a token ID for ttl, normally the token's remaining lifetime
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeMember rejects every token of a member issued before now
	RevokeMember(ctx context.Context, memberID string, ttl time.Duration) error
	IsMemberRevoked(ctx context.Context, memberID string, issuedAt time.Time) (bool, error)
}

const blacklistPrefix = "comfund:token:"

// RedisTokenBlacklist stores revocations in Redis so every instance sees them
type RedisTokenBlacklist struct {
	client redis.UniversalClient
}

// NewRedisTokenBlacklist wraps an existing client
func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

// Revoke implements TokenBlacklist
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blacklistPrefix+"jti:"+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked implements TokenBlacklist
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistPrefix+"jti:"+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

// RevokeMember implements TokenBlacklist
func (b *RedisTokenBlacklist) RevokeMember(ctx context.Context, memberID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, blacklistPrefix+"member:"+memberID, time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke member tokens: %w", err)
	}
	return nil
}

// IsMemberRevoked implements TokenBlacklist
func (b *RedisTokenBlacklist) IsMemberRevoked(ctx context.Context, memberID string, issuedAt time.Time) (bool, error) {
	ts, err := b.client.Get(ctx, blacklistPrefix+"member:"+memberID).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check member revocation: %w", err)
	}
	return issuedAt.Unix() <= ts, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist is the single-instance fallback used when Redis is disabled
type InMemoryTokenBlacklist struct {
	mu      sync.Mutex
	tokens  map[string]time.Time
	members map[string]time.Time
}

// NewInMemoryTokenBlacklist creates an empty in-memory blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens:  make(map[string]time.Time),
		members: make(map[string]time.Time),
	}
}

// Revoke implements TokenBlacklist
func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked implements TokenBlacklist
func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.tokens[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(b.tokens, jti)
		return false, nil
	}
	return true, nil
}

// RevokeMember implements TokenBlacklist
func (b *InMemoryTokenBlacklist) RevokeMember(_ context.Context, memberID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.members[memberID] = time.Now()
	return nil
}

// IsMemberRevoked implements TokenBlacklist
func (b *InMemoryTokenBlacklist) IsMemberRevoked(_ context.Context, memberID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	at, ok := b.members[memberID]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(at), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
