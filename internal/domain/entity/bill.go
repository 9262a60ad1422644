package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bill represents one tailoring work order.
// ReceiptDiscount, PaidAmount, DueAmount, TaxAmount, GrandTotal and PaymentStatus are a cached
// derivation of the bill's receipts and are only written by the reconciliation flow.
type Bill struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	ShopID          uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_bills_shop_number" json:"shop_id"`
	BillNumber      int64              `gorm:"not null;uniqueIndex:idx_bills_shop_number" json:"bill_number"`
	CustomerID      *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Name            string             `gorm:"size:255" json:"name"`
	Category        string             `gorm:"size:100;index" json:"category"`
	OrderDate       time.Time          `gorm:"not null" json:"order_date"`
	DeliveryDate    *time.Time         `json:"delivery_date,omitempty"`
	TotalAmount     decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"total_amount"`
	Discount        decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	ReceiptDiscount decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"receipt_discount"`
	TaxAmount       decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"tax_amount"`
	GrandTotal      decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"grand_total"`
	PaidAmount      decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"paid_amount"`
	DueAmount       decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"due_amount"`
	PaymentStatus   enum.PaymentStatus `gorm:"size:20;not null;default:'Unpaid';index" json:"payment_status"`
	Notes           *string            `gorm:"type:text" json:"notes,omitempty"`
	Version         int                `gorm:"not null;default:1" json:"version"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []BillItem `gorm:"foreignKey:BillID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// ItemsTotal sums the amounts of the bill's order lines.
func (b *Bill) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Amount)
	}
	return RoundMoney(total)
}

// BillItem is one order line of a bill, e.g. "2 x shirt stitching @ 450"
type BillItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	Position  int             `gorm:"not null;default:0" json:"position"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Rate      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"rate"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new bill item
func (i *BillItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}
