// Package lock serializes writers of the same bill.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/sangkips/tailorbook-api/internal/config"
	"go.uber.org/zap"
)

// ErrTimeout is returned when a lock could not be taken before the wait deadline.
var ErrTimeout = errors.New("timed out waiting for lock")

// Release gives a lock back. Calling it more than once is a no-op.
type Release func()

// Locker hands out exclusive locks on string keys.
type Locker interface {
	// Acquire blocks until key is held by the caller, ctx is done or the
	// configured wait timeout passes.
	Acquire(ctx context.Context, key string) (Release, error)
}

// BillKey names the lock guarding one bill of a shop.
func BillKey(shopID uuid.UUID, billNumber int64) string {
	return fmt.Sprintf("bill:%s:%d", shopID, billNumber)
}

// New builds the locker selected in cfg. client is only used by the redis driver.
func New(cfg config.LockConfig, client *redis.Client, log *zap.Logger) (Locker, error) {
	switch cfg.Driver {
	case config.LockDriverRedis:
		if client == nil {
			return nil, errors.New("redis lock driver needs a redis client")
		}
		return NewRedisLocker(client, cfg.TTL, cfg.WaitTimeout, cfg.RetryInterval, log), nil
	default:
		return NewMemoryLocker(cfg.WaitTimeout), nil
	}
}

// waitContext bounds ctx by timeout when timeout is positive.
func waitContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func waitError(ctx context.Context, key string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, key)
	}
	return ctx.Err()
}
