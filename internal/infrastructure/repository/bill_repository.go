package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tailorbook-api/internal/domain/repository"
	"github.com/sangkips/tailorbook-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func itemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	for i := range bill.Items {
		bill.Items[i].Position = i
	}
	return conn(ctx, r.db).Create(bill).Error
}

func (r *billRepository) GetByNumber(ctx context.Context, number int64) (*entity.Bill, error) {
	var bill entity.Bill
	err := conn(ctx, r.db).
		Scopes(ShopScope(ctx)).
		Preload("Items", itemsByPosition).
		Preload("Customer").
		First(&bill, "bill_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) GetForUpdate(ctx context.Context, number int64) (*entity.Bill, error) {
	db := conn(ctx, r.db)

	var bill entity.Bill
	err := db.Scopes(ShopScope(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&bill, "bill_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := db.Scopes(itemsByPosition).Where("bill_id = ?", bill.ID).Find(&bill.Items).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) List(ctx context.Context, filter domainRepo.BillFilter, params *pagination.PaginationParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := conn(ctx, r.db).Model(&entity.Bill{}).Scopes(ShopScope(ctx))

	if filter.Status != "" {
		query = query.Where("payment_status = ?", filter.Status)
	}

	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	if filter.DueOnly {
		query = query.Where("due_amount > 0")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Items", itemsByPosition).
		Order("bill_number DESC").
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) Save(ctx context.Context, bill *entity.Bill) error {
	now := time.Now()
	result := conn(ctx, r.db).
		Model(&entity.Bill{}).
		Scopes(ShopScope(ctx)).
		Where("id = ? AND version = ?", bill.ID, bill.Version).
		Updates(map[string]interface{}{
			"customer_id":      bill.CustomerID,
			"name":             bill.Name,
			"category":         bill.Category,
			"order_date":       bill.OrderDate,
			"delivery_date":    bill.DeliveryDate,
			"total_amount":     bill.TotalAmount,
			"discount":         bill.Discount,
			"receipt_discount": bill.ReceiptDiscount,
			"tax_amount":       bill.TaxAmount,
			"grand_total":      bill.GrandTotal,
			"paid_amount":      bill.PaidAmount,
			"due_amount":       bill.DueAmount,
			"payment_status":   bill.PaymentStatus,
			"notes":            bill.Notes,
			"version":          bill.Version + 1,
			"updated_at":       now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrVersionConflict
	}

	bill.Version++
	bill.UpdatedAt = now
	return nil
}

func (r *billRepository) ReplaceItems(ctx context.Context, billID uuid.UUID, items []entity.BillItem) error {
	db := conn(ctx, r.db)
	if err := db.Where("bill_id = ?", billID).Delete(&entity.BillItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	for i := range items {
		items[i].ID = uuid.Nil
		items[i].BillID = billID
		items[i].Position = i
	}
	return db.Create(&items).Error
}

func (r *billRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(ShopScope(ctx)).Delete(&entity.Bill{}, "id = ?", id).Error
}
