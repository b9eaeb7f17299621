package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotObtained is returned when another holder keeps the lock
var ErrLockNotObtained = errors.New("lock not obtained")

// Lock is a held lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtains named locks
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// RedisLocker takes locks through redislock so only one instance runs a
// guarded section at a time.
type RedisLocker struct {
	client *redislock.Client
	retry  redislock.RetryStrategy
}

// NewRedisLocker creates a locker that retries every 100ms until ctx is done
func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(client),
		retry:  redislock.LinearBackoff(100 * time.Millisecond),
	}
}

// Obtain implements Locker
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lock, err := l.client.Obtain(ctx, "comfund:lock:"+key, ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return lock, nil
}

var _ Locker = (*RedisLocker)(nil)

// LocalLocker serializes holders of the same key within one process
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

type localLock struct {
	ch   chan struct{}
	once sync.Once
}

func (l *localLock) Release(context.Context) error {
	l.once.Do(func() { <-l.ch })
	return nil
}

// Obtain implements Locker. ttl is ignored since the lock dies with the process.
func (l *LocalLocker) Obtain(ctx context.Context, key string, _ time.Duration) (Lock, error) {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return &localLock{ch: ch}, nil
	case <-ctx.Done():
		return nil, ErrLockNotObtained
	}
}

var _ Locker = (*LocalLocker)(nil)
