package entity

import "github.com/google/uuid"

// Sequence names used for per-shop document numbers
const (
	SequenceBill    = "bill"
	SequenceReceipt = "receipt"
)

// ShopSequence holds the last number issued for a shop-scoped document series
type ShopSequence struct {
	ShopID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name   string    `gorm:"size:50;primaryKey"`
	Value  int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for ShopSequence
func (ShopSequence) TableName() string {
	return "shop_sequences"
}
