package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingKey(shopID uuid.UUID, key string, expiresAt time.Time) *entity.IdempotencyKey {
	return &entity.IdempotencyKey{
		Key:       key,
		ShopID:    shopID,
		UserID:    uuid.New(),
		Endpoint:  "POST /api/v1/receipts",
		ExpiresAt: expiresAt,
	}
}

func TestIdempotencyRepository_ClaimOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx, shopID := testutil.ShopContext()
	otherCtx, otherShop := testutil.ShopContext()
	expires := time.Now().Add(time.Hour)

	claimed, err := repo.Claim(ctx, pendingKey(shopID, "k1", expires))
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.Claim(ctx, pendingKey(shopID, "k1", expires))
	require.NoError(t, err)
	assert.False(t, claimed, "a held key cannot be claimed again")

	claimed, err = repo.Claim(otherCtx, pendingKey(otherShop, "k1", expires))
	require.NoError(t, err)
	assert.True(t, claimed, "keys are per shop")

	stored, err := repo.GetByKey(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsPending())
}

func TestIdempotencyRepository_CompleteAndRelease(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx, shopID := testutil.ShopContext()
	expires := time.Now().Add(time.Hour)

	_, err := repo.Claim(ctx, pendingKey(shopID, "done", expires))
	require.NoError(t, err)
	require.NoError(t, repo.Complete(ctx, "done", 201, `{"success":true}`))

	stored, err := repo.GetByKey(ctx, "done")
	require.NoError(t, err)
	assert.False(t, stored.IsPending())
	assert.Equal(t, 201, stored.ResponseCode)
	assert.Equal(t, `{"success":true}`, stored.ResponseBody)

	// A completed key survives a release and cannot be completed twice
	require.NoError(t, repo.Release(ctx, "done"))
	stored, err = repo.GetByKey(ctx, "done")
	require.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Error(t, repo.Complete(ctx, "done", 201, "{}"))

	_, err = repo.Claim(ctx, pendingKey(shopID, "failed", expires))
	require.NoError(t, err)
	require.NoError(t, repo.Release(ctx, "failed"))
	stored, err = repo.GetByKey(ctx, "failed")
	require.NoError(t, err)
	assert.Nil(t, stored)

	claimed, err := repo.Claim(ctx, pendingKey(shopID, "failed", expires))
	require.NoError(t, err)
	assert.True(t, claimed, "a released key can be claimed again")
}

func TestIdempotencyRepository_DeleteExpired(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx, shopID := testutil.ShopContext()

	_, err := repo.Claim(ctx, pendingKey(shopID, "old", time.Now().Add(-time.Minute)))
	require.NoError(t, err)
	_, err = repo.Claim(ctx, pendingKey(shopID, "fresh", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	stored, err := repo.GetByKey(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, stored)
}
