package request

import (
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// TaxRequest creates or replaces a shop tax definition
type TaxRequest struct {
	Name          string          `json:"name" binding:"required,max=100"`
	TaxType       enum.TaxType    `json:"tax_type" binding:"required"`
	TaxPercentage decimal.Decimal `json:"tax_percentage"`
	Active        *bool           `json:"active"`
}
