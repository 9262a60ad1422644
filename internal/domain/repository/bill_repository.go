package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/sangkips/tailorbook-api/pkg/pagination"
)

// ErrVersionConflict is returned when a bill changed after it was read.
var ErrVersionConflict = errors.New("bill was modified by another request")

// BillFilter narrows bill listings
type BillFilter struct {
	Status     enum.PaymentStatus
	Category   string
	CustomerID *uuid.UUID
	Search     string // bill holder name
	DueOnly    bool
}

// BillRepository defines the interface for bill data operations
type BillRepository interface {
	// Create inserts the bill with its items
	Create(ctx context.Context, bill *entity.Bill) error
	// GetByNumber loads a bill with its items, or nil when it does not exist
	GetByNumber(ctx context.Context, number int64) (*entity.Bill, error)
	// GetForUpdate is GetByNumber taking a row lock where the database supports it
	GetForUpdate(ctx context.Context, number int64) (*entity.Bill, error)
	List(ctx context.Context, filter BillFilter, params *pagination.PaginationParams) ([]entity.Bill, int64, error)
	// Save writes every bill column if the stored version still equals
	// bill.Version, then increments bill.Version. Returns ErrVersionConflict otherwise.
	Save(ctx context.Context, bill *entity.Bill) error
	// ReplaceItems swaps the order lines of a bill
	ReplaceItems(ctx context.Context, billID uuid.UUID, items []entity.BillItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}
