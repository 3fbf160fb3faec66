package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const retryInterval = 100 * time.Millisecond

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

type leaseClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisLocker holds a lease in Redis so that several API instances share one lock per key.
// The lease is extended every ttl/3 while held, so ttl only bounds how long a crashed
// holder blocks the key.
type RedisLocker struct {
	client leaseClient
	prefix string
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisLocker constructs a lease-based locker.
func NewRedisLocker(client *redis.Client, prefix string, ttl, wait time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl, wait: wait}
}

// Acquire polls SET NX until the lease is obtained or the wait elapses.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (Unlock, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", fullKey, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.keepAlive(fullKey, token, stop)
	}()

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			close(stop)
			<-done
		})
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("redis unlock %s: %w", fullKey, err)
		}
		return nil
	}, nil
}

// keepAlive extends the lease until stop is closed or the lease is no longer ours.
// Failed renewals are retried on the next tick.
func (l *RedisLocker) keepAlive(fullKey, token string, stop <-chan struct{}) {
	interval := l.ttl / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			renewed, err := renewScript.Run(ctx, l.client, []string{fullKey}, token, l.ttl.Milliseconds()).Int64()
			cancel()
			if err == nil && renewed == 0 {
				return
			}
		}
	}
}
