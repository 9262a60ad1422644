package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
)

// TaxRepository defines the interface for shop tax definitions
type TaxRepository interface {
	Create(ctx context.Context, tax *entity.Tax) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Tax, error)
	// GetByIDs returns the definitions in the order of ids; unknown ids are skipped
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Tax, error)
	List(ctx context.Context, activeOnly bool) ([]entity.Tax, error)
	Update(ctx context.Context, tax *entity.Tax) error
	Delete(ctx context.Context, id uuid.UUID) error
}
