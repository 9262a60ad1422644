package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
)

// ReceiptRepository defines the interface for receipt data operations
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt) error
	// Update rewrites the payment fields of a receipt. The bill reference is never written.
	Update(ctx context.Context, receipt *entity.Receipt) error
	GetByNumber(ctx context.Context, number int64) (*entity.Receipt, error)
	// ListByBill returns the bill's receipts ordered by payment date, then receipt number
	ListByBill(ctx context.Context, billID uuid.UUID) ([]entity.Receipt, error)
	CountByBill(ctx context.Context, billID uuid.UUID) (int64, error)
}
