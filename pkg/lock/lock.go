package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotAcquired is returned when the lock could not be obtained before the wait deadline.
var ErrNotAcquired = errors.New("lock not acquired")

// Unlock releases a held lock.
type Unlock func(ctx context.Context) error

// Locker serializes work identified by a key.
type Locker interface {
	Acquire(ctx context.Context, key string) (Unlock, error)
}

// MemoryLocker is a keyed mutex for single-instance deployments.
type MemoryLocker struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
	wait time.Duration
}

// NewMemoryLocker builds a keyed in-process lock. A non-positive wait blocks until ctx is done.
func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	return &MemoryLocker{keys: make(map[string]chan struct{}), wait: wait}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.keys[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.keys[key] = ch
	}
	return ch
}

// Acquire blocks until the key is free, the wait elapses or ctx is cancelled.
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (Unlock, error) {
	ch := l.slot(key)

	var timeout <-chan time.Time
	if l.wait > 0 {
		timer := time.NewTimer(l.wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
	case <-timeout:
		return nil, ErrNotAcquired
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-ch })
		return nil
	}, nil
}
