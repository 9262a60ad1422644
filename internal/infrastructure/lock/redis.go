package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const releaseTimeout = 2 * time.Second

// RedisLocker is a Locker shared by every API instance using the same Redis.
// A holder that dies keeps the key until ttl expires.
type RedisLocker struct {
	client        *redis.Client
	script        *redis.Script
	ttl           time.Duration
	waitTimeout   time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewRedisLocker creates a Redis backed locker.
func NewRedisLocker(client *redis.Client, ttl, waitTimeout, retryInterval time.Duration, log *zap.Logger) *RedisLocker {
	if retryInterval <= 0 {
		retryInterval = 25 * time.Millisecond
	}
	return &RedisLocker{
		client:        client,
		script:        redis.NewScript(releaseScript),
		ttl:           ttl,
		waitTimeout:   waitTimeout,
		retryInterval: retryInterval,
		logger:        log.Named("lock"),
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	waitCtx, cancel := waitContext(ctx, l.waitTimeout)
	defer cancel()

	token := uuid.NewString()
	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil {
			if waitCtx.Err() != nil {
				return nil, waitError(waitCtx, key)
			}
			return nil, err
		}
		if ok {
			return l.release(key, token), nil
		}

		select {
		case <-waitCtx.Done():
			return nil, waitError(waitCtx, key)
		case <-ticker.C:
		}
	}
}

// release deletes key only while it still holds token, so an expired
// holder cannot drop a lock taken over by someone else.
func (l *RedisLocker) release(key, token string) Release {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if err := l.script.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				l.logger.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
			}
		})
	}
}
