package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/sangkips/tailorbook-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBillKey(t *testing.T) {
	shopID := uuid.MustParse("6f1c2d8e-1b2a-4c3d-9e8f-0a1b2c3d4e5f")
	assert.Equal(t, "bill:6f1c2d8e-1b2a-4c3d-9e8f-0a1b2c3d4e5f:42", BillKey(shopID, 42))
}

func TestNew(t *testing.T) {
	l, err := New(config.LockConfig{Driver: config.LockDriverMemory}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryLocker{}, l)

	_, err = New(config.LockConfig{Driver: config.LockDriverRedis}, nil, zap.NewNop())
	assert.Error(t, err)
}

// exerciseMutualExclusion runs workers that each hold key while bumping a
// counter; any overlap shows up as inFlight > 1.
func exerciseMutualExclusion(t *testing.T, l Locker, key string) {
	t.Helper()

	var inFlight, maxInFlight, done int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), key)
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&inFlight, 1)
			for {
				m := atomic.LoadInt32(&maxInFlight)
				if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			atomic.AddInt32(&done, 1)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxInFlight)
	assert.EqualValues(t, 20, done)
}

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	exerciseMutualExclusion(t, NewMemoryLocker(5*time.Second), "bill:shop:1")
}

func TestMemoryLocker_Timeout(t *testing.T) {
	l := NewMemoryLocker(20 * time.Millisecond)

	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), "k")
	assert.ErrorIs(t, err, ErrTimeout)

	other, err := l.Acquire(context.Background(), "other")
	require.NoError(t, err, "keys are independent")
	other()

	release()
	release()

	again, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	again()

	l.mu.Lock()
	assert.Empty(t, l.entries)
	l.mu.Unlock()
}

func TestMemoryLocker_Cancelled(t *testing.T) {
	l := NewMemoryLocker(0)
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func redisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisLocker(t *testing.T) {
	client := redisClient(t)
	key := "test:" + uuid.NewString()
	l := NewRedisLocker(client, 5*time.Second, 5*time.Second, 5*time.Millisecond, zap.NewNop())

	exerciseMutualExclusion(t, l, key)

	release, err := l.Acquire(context.Background(), key)
	require.NoError(t, err)

	short := NewRedisLocker(client, 5*time.Second, 30*time.Millisecond, 5*time.Millisecond, zap.NewNop())
	_, err = short.Acquire(context.Background(), key)
	assert.ErrorIs(t, err, ErrTimeout)

	release()
	exists, err := client.Exists(context.Background(), key).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
