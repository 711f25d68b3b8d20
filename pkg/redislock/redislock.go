// Package redislock is a per-key mutex shared by every marketplace instance
// that points at the same Redis.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrTimeout = errors.New("redislock: timed out waiting for lock")

// releaseScript deletes the key only if it still holds our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type Locker struct {
	client   redis.Cmdable
	prefix   string
	ttl      time.Duration
	wait     time.Duration
	retry    time.Duration
	newToken func() string
}

func New(client redis.Cmdable) *Locker {
	return &Locker{
		client:   client,
		prefix:   "lock:marketplace:",
		ttl:      10 * time.Second,
		wait:     5 * time.Second,
		retry:    25 * time.Millisecond,
		newToken: uuid.NewString,
	}
}

// Lock blocks until key is acquired, ctx ends, or the wait budget runs out.
// The lock expires on its own after ttl if the holder dies.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := l.newToken()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redislock acquire %s: %w", key, err)
		}
		if ok {
			return func() { l.release(redisKey, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func (l *Locker) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := l.client.Eval(ctx, releaseScript, []string{redisKey}, token).Err(); err != nil {
		log.Printf("[RedisLock] failed to release %s: %v", redisKey, err)
	}
}
