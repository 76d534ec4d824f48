package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("document lock not acquired")
)

// Locker guards read-modify-write cycles on the shared appointment
// document. Writers (seed, doctor-sim) take it before rewriting the
// document so concurrent writers cannot interleave; the sync agent never
// writes and therefore never locks.
type Locker interface {
	WithDocumentLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type redisDocumentLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDocumentLocker creates a locker using a per document Redis key
func NewRedisDocumentLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisDocumentLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisDocumentLocker) WithDocumentLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lockKey := fmt.Sprintf("lock:doc:%s", key)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire document lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, lockKey, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisDocumentLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release document lock: %w", err)
	}
	return nil
}
