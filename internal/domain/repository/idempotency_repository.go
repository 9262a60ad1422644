package repository

import (
	"context"

	"github.com/sangkips/tailorbook-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an idempotency key of the shop in ctx
	GetByKey(ctx context.Context, key string) (*entity.IdempotencyKey, error)
	// Claim inserts a pending key. It reports false when the shop already holds the key.
	Claim(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	// Complete stores the response of a claimed key
	Complete(ctx context.Context, key string, code int, body string) error
	// Release drops a key that is still pending so the request can be retried
	Release(ctx context.Context, key string) error
	// DeleteExpired removes expired idempotency keys of every shop
	DeleteExpired(ctx context.Context) (int64, error)
}
