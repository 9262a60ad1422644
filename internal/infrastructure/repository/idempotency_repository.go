package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tailorbook-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := conn(ctx, r.db).
		Scopes(ShopScope(ctx)).
		Where("key = ?", key).
		First(&ikey).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ikey, err
}

// Claim relies on idx_idempotency_shop_key: of two racing inserts only one affects a row.
func (r *idempotencyRepository) Claim(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	result := conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(ikey)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, key string, code int, body string) error {
	result := conn(ctx, r.db).
		Model(&entity.IdempotencyKey{}).
		Scopes(ShopScope(ctx)).
		Where("key = ? AND response_code = ?", key, entity.IdempotencyPending).
		Updates(map[string]interface{}{
			"response_code": code,
			"response_body": body,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("idempotency key is not pending")
	}
	return nil
}

func (r *idempotencyRepository) Release(ctx context.Context, key string) error {
	return conn(ctx, r.db).
		Scopes(ShopScope(ctx)).
		Where("key = ? AND response_code = ?", key, entity.IdempotencyPending).
		Delete(&entity.IdempotencyKey{}).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := conn(ctx, r.db).
		Where("expires_at < ?", time.Now()).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}
