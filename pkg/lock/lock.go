// Package lock serializes work on a key, either within one process or across
// replicas through Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotAcquired is returned when the lock could not be taken within the retry budget.
var ErrNotAcquired = errors.New("lock not acquired, system busy")

// Locker hands out exclusive ownership of a key. The returned release func must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type entry struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is an in-process keyed mutex. Entries are dropped once nobody holds or waits on them.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{entries: make(map[string]*entry)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, e)
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.unref(key, e)
		})
	}, nil
}

func (l *LocalLocker) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

type RedisConfig struct {
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

// RedisClient is the subset of *cache.RedisClient the locker needs.
type RedisClient interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// RedisLocker takes a SET NX lock with a random token and releases it with compare-and-delete.
type RedisLocker struct {
	client RedisClient
	cfg    RedisConfig
}

func NewRedisLocker(client RedisClient, cfg RedisConfig) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Second
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	return &RedisLocker{client: client, cfg: cfg}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()

	var lastErr error
	for i := 0; i < l.cfg.Retries; i++ {
		ok, err := l.client.AcquireLock(ctx, key, token, l.cfg.TTL)
		if err != nil {
			lastErr = err
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					// The caller's ctx may already be cancelled; release must still run.
					releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
					defer cancel()
					_ = l.client.ReleaseLock(releaseCtx, key, token)
				})
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-time.After(l.cfg.RetryDelay):
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, lastErr)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
}
