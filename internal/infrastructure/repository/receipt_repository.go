package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tailorbook-api/internal/domain/repository"
	"gorm.io/gorm"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	return conn(ctx, r.db).Create(receipt).Error
}

func (r *receiptRepository) Update(ctx context.Context, receipt *entity.Receipt) error {
	return conn(ctx, r.db).
		Model(receipt).
		Scopes(ShopScope(ctx)).
		Select("name", "amount", "discount", "tax", "tax_amount",
			"payment_method", "payment_date", "payment_type", "notes", "updated_at").
		Updates(receipt).Error
}

func (r *receiptRepository) GetByNumber(ctx context.Context, number int64) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := conn(ctx, r.db).Scopes(ShopScope(ctx)).First(&receipt, "receipt_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) ListByBill(ctx context.Context, billID uuid.UUID) ([]entity.Receipt, error) {
	var receipts []entity.Receipt
	err := conn(ctx, r.db).
		Scopes(ShopScope(ctx)).
		Where("bill_id = ?", billID).
		Order("payment_date ASC, receipt_number ASC").
		Find(&receipts).Error
	return receipts, err
}

func (r *receiptRepository) CountByBill(ctx context.Context, billID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&entity.Receipt{}).
		Scopes(ShopScope(ctx)).
		Where("bill_id = ?", billID).
		Count(&count).Error
	return count, err
}
