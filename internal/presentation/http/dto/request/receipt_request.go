package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// CreateReceiptRequest records a payment against a bill. Amount, bill number,
// payment method and date are checked by the reconciler so that a rejection
// always names the first rule that failed.
type CreateReceiptRequest struct {
	BillNumber    int64              `json:"bill_number"`
	Amount        decimal.Decimal    `json:"amount"`
	Discount      decimal.Decimal    `json:"discount"`
	TaxIDs        []uuid.UUID        `json:"tax_ids"`
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
	PaymentDate   Date               `json:"payment_date"`
	Notes         *string            `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateReceiptRequest edits a payment. Omitting tax_ids keeps the receipt's
// tax snapshot; an empty list removes its taxes.
type UpdateReceiptRequest struct {
	Amount        decimal.Decimal    `json:"amount"`
	Discount      decimal.Decimal    `json:"discount"`
	TaxIDs        *[]uuid.UUID       `json:"tax_ids"`
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
	PaymentDate   Date               `json:"payment_date"`
	Notes         *string            `json:"notes" binding:"omitempty,max=1000"`
}
