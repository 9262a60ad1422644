package reconciliation

import (
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Drift describes a cached bill field that disagrees with the receipt history.
type Drift struct {
	Field   string `json:"field"`
	Cached  string `json:"cached"`
	Derived string `json:"derived"`
}

// DetectDrift compares the cached aggregate fields of a bill with a fresh
// derivation from its receipts. An empty result means the bill is consistent.
func DetectDrift(bill *entity.Bill, receipts []entity.Receipt) []Drift {
	totals := DeriveBillTotals(BaseOf(bill), receipts)

	var drifts []Drift
	check := func(field string, cached, derived decimal.Decimal) {
		if !cached.Round(2).Equal(derived) {
			drifts = append(drifts, Drift{Field: field, Cached: cached.StringFixed(2), Derived: derived.StringFixed(2)})
		}
	}
	check("receipt_discount", bill.ReceiptDiscount, totals.ReceiptDiscount)
	check("tax_amount", bill.TaxAmount, totals.TaxAmount)
	check("grand_total", bill.GrandTotal, totals.GrandTotal)
	check("paid_amount", bill.PaidAmount, totals.PaidAmount)
	check("due_amount", bill.DueAmount, totals.DueAmount)

	if status := totals.Status(); bill.PaymentStatus != status {
		drifts = append(drifts, Drift{Field: "payment_status", Cached: bill.PaymentStatus.String(), Derived: status.String()})
	}
	return drifts
}
