package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tax is a shop-wide tax definition. Receipts copy it into a TaxLine at payment time.
type Tax struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ShopID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"shop_id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	TaxType       enum.TaxType    `gorm:"size:20;not null" json:"tax_type"`
	TaxPercentage decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"tax_percentage"`
	Active        bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new tax
func (t *Tax) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Tax model
func (Tax) TableName() string {
	return "taxes"
}

// Snapshot copies the definition into a receipt tax line.
func (t *Tax) Snapshot() TaxLine {
	return TaxLine{
		TaxName:       t.Name,
		TaxType:       t.TaxType,
		TaxPercentage: t.TaxPercentage,
	}
}
