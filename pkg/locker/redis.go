package locker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig tunes a RedisLocker.
type RedisConfig struct {
	// Prefix is prepended to every key.
	Prefix string
	// TTL bounds how long a crashed holder keeps a lock.
	TTL time.Duration
	// RetryInterval is the pause between acquisition attempts.
	RetryInterval time.Duration
}

// RedisLocker is a Locker shared by every process using the same Redis.
type RedisLocker struct {
	client redis.UniversalClient
	cfg    RedisConfig
}

// NewRedisLocker creates a RedisLocker on top of an existing client.
func NewRedisLocker(client redis.UniversalClient, cfg RedisConfig) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 10 * time.Millisecond
	}
	return &RedisLocker{client: client, cfg: cfg}
}

// Lock implements Locker.
func (l *RedisLocker) Lock(ctx context.Context, key string) (Release, error) {
	name := l.cfg.Prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, name, token, l.cfg.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
		}
		if ok {
			break
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var (
		once       sync.Once
		releaseErr error
	)
	return func() error {
		once.Do(func() {
			// The caller's ctx may already be done.
			rctx, cancel := context.WithTimeout(context.Background(), l.cfg.TTL)
			defer cancel()

			n, err := releaseScript.Run(rctx, l.client, []string{name}, token).Int()
			switch {
			case err != nil:
				releaseErr = fmt.Errorf("failed to release lock %s: %w", name, err)
			case n == 0:
				releaseErr = fmt.Errorf("release %s: %w", name, ErrLockLost)
			}
		})
		return releaseErr
	}, nil
}
