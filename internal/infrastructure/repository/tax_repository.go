package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tailorbook-api/internal/domain/repository"
	"gorm.io/gorm"
)

type taxRepository struct {
	db *gorm.DB
}

// NewTaxRepository creates a new tax definition repository
func NewTaxRepository(db *gorm.DB) domainRepo.TaxRepository {
	return &taxRepository{db: db}
}

func (r *taxRepository) Create(ctx context.Context, tax *entity.Tax) error {
	return conn(ctx, r.db).Create(tax).Error
}

func (r *taxRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Tax, error) {
	var tax entity.Tax
	err := conn(ctx, r.db).Scopes(ShopScope(ctx)).First(&tax, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tax, err
}

func (r *taxRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Tax, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []entity.Tax
	if err := conn(ctx, r.db).Scopes(ShopScope(ctx)).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entity.Tax, len(found))
	for _, tax := range found {
		byID[tax.ID] = tax
	}
	ordered := make([]entity.Tax, 0, len(ids))
	for _, id := range ids {
		if tax, ok := byID[id]; ok {
			ordered = append(ordered, tax)
		}
	}
	return ordered, nil
}

func (r *taxRepository) List(ctx context.Context, activeOnly bool) ([]entity.Tax, error) {
	var taxes []entity.Tax
	query := conn(ctx, r.db).Scopes(ShopScope(ctx))
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("name ASC").Find(&taxes).Error
	return taxes, err
}

func (r *taxRepository) Update(ctx context.Context, tax *entity.Tax) error {
	return conn(ctx, r.db).Scopes(ShopScope(ctx)).Save(tax).Error
}

func (r *taxRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(ShopScope(ctx)).Delete(&entity.Tax{}, "id = ?", id).Error
}
