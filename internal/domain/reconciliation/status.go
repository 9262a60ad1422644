package reconciliation

import (
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// DerivePaymentStatus maps a due amount against the grand total to a status.
func DerivePaymentStatus(due, grand decimal.Decimal) enum.PaymentStatus {
	switch {
	case !due.IsPositive():
		return enum.PaymentStatusPaid
	case due.LessThan(grand):
		return enum.PaymentStatusPartiallyPaid
	default:
		return enum.PaymentStatusUnpaid
	}
}
