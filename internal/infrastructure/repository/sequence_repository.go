package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tailorbook-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a repository for per-shop document numbers
func NewSequenceRepository(db *gorm.DB) domainRepo.SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next increments the counter row in place, so concurrent callers are
// serialized by the row lock of the update.
func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	shopID, ok := GetShopID(ctx)
	if !ok {
		return 0, errors.New("shop context required")
	}

	db := conn(ctx, r.db)
	seq := entity.ShopSequence{ShopID: shopID, Name: name}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to initialise %s sequence: %w", name, err)
	}

	where := db.Where("shop_id = ? AND name = ?", shopID, name)
	if err := where.Model(&entity.ShopSequence{}).UpdateColumn("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", name, err)
	}

	var current entity.ShopSequence
	if err := conn(ctx, r.db).Where("shop_id = ? AND name = ?", shopID, name).Take(&current).Error; err != nil {
		return 0, fmt.Errorf("failed to read %s sequence: %w", name, err)
	}
	return current.Value, nil
}
