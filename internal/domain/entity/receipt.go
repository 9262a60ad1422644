package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaxLine is a snapshot of a tax definition taken when a payment is recorded.
// For Fixed taxes TaxPercentage holds the flat amount.
type TaxLine struct {
	TaxName       string          `json:"tax_name"`
	TaxType       enum.TaxType    `json:"tax_type"`
	TaxPercentage decimal.Decimal `json:"tax_percentage"`
}

// Receipt is one payment event recorded against exactly one bill.
// BillID and BillNumber never change after creation.
type Receipt struct {
	ID            uuid.UUID                    `gorm:"type:uuid;primary_key" json:"id"`
	ShopID        uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex:idx_receipts_shop_number" json:"shop_id"`
	ReceiptNumber int64                        `gorm:"not null;uniqueIndex:idx_receipts_shop_number" json:"receipt_number"`
	BillID        uuid.UUID                    `gorm:"type:uuid;not null;index" json:"bill_id"`
	BillNumber    int64                        `gorm:"not null;index" json:"bill_number"`
	Name          string                       `gorm:"size:255" json:"name"`
	Amount        decimal.Decimal              `gorm:"type:numeric(12,2);not null" json:"amount"`
	Discount      decimal.Decimal              `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	Tax           datatypes.JSONSlice[TaxLine] `json:"tax"`
	TaxAmount     decimal.Decimal              `gorm:"type:numeric(12,2);not null;default:0" json:"tax_amount"`
	PaymentMethod enum.PaymentMethod           `gorm:"size:20;not null" json:"payment_method"`
	PaymentDate   time.Time                    `gorm:"not null" json:"payment_date"`
	PaymentType   enum.PaymentType             `gorm:"size:20;not null" json:"payment_type"`
	Notes         *string                      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new receipt
func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Receipt model
func (Receipt) TableName() string {
	return "receipts"
}

// NetPayment is the value credited toward the bill's due amount.
func (r *Receipt) NetPayment() decimal.Decimal {
	return r.Amount.Add(r.Discount)
}
