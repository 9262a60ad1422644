package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Customer represents a customer of the shop
type Customer struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	ShopID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"shop_id"`
	Name         string            `gorm:"size:255;not null" json:"name"`
	Phone        *string           `gorm:"size:50;index" json:"phone,omitempty"`
	Email        *string           `gorm:"size:255" json:"email,omitempty"`
	Address      *string           `gorm:"type:text" json:"address,omitempty"`
	Measurements datatypes.JSONMap `json:"measurements,omitempty"` // e.g. {"chest": 40, "sleeve": 24.5}
	Notes        *string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	Bills []Bill `gorm:"foreignKey:CustomerID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// AfterFind turns measurements decoded as json.Number back into float64
func (c *Customer) AfterFind(tx *gorm.DB) error {
	c.normalizeMeasurements()
	return nil
}

func (c *Customer) normalizeMeasurements() {
	for name, v := range c.Measurements {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if f, err := n.Float64(); err == nil {
			c.Measurements[name] = f
		}
	}
}
