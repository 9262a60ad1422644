package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillItemRequest is one order line
type BillItemRequest struct {
	Name     string          `json:"name" binding:"required,max=255"`
	Quantity int             `json:"quantity" binding:"required,min=1"`
	Rate     decimal.Decimal `json:"rate"`
}

// CreateBillRequest represents a bill creation request. Name defaults to the
// customer's name when a customer is given.
type CreateBillRequest struct {
	CustomerID   *uuid.UUID        `json:"customer_id"`
	Name         string            `json:"name" binding:"max=255"`
	Category     string            `json:"category" binding:"max=100"`
	OrderDate    *Date             `json:"order_date"`
	DeliveryDate *Date             `json:"delivery_date"`
	Items        []BillItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount     decimal.Decimal   `json:"discount"`
	Notes        *string           `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateBillRequest represents a bill edit. Items, when present, replace all
// order lines. Version guards against editing a stale copy.
type UpdateBillRequest struct {
	Version      *int              `json:"version" binding:"omitempty,min=1"`
	CustomerID   *uuid.UUID        `json:"customer_id"`
	Name         *string           `json:"name" binding:"omitempty,min=1,max=255"`
	Category     *string           `json:"category" binding:"omitempty,max=100"`
	OrderDate    *Date             `json:"order_date"`
	DeliveryDate *Date             `json:"delivery_date"`
	Items        []BillItemRequest `json:"items" binding:"omitempty,min=1,dive"`
	Discount     *decimal.Decimal  `json:"discount"`
	Notes        *string           `json:"notes" binding:"omitempty,max=1000"`
}

// BillFilterRequest represents bill list filters
type BillFilterRequest struct {
	Status     string `form:"status"`
	Category   string `form:"category"`
	CustomerID string `form:"customer_id"`
	Search     string `form:"search"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}
