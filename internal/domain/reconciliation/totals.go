package reconciliation

import (
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// BillBase holds the bill fields owned by the bill itself.
type BillBase struct {
	TotalAmount decimal.Decimal
	Discount    decimal.Decimal // bill-level discount entered by the shop
}

// BaseOf extracts the base fields of a bill.
func BaseOf(bill *entity.Bill) BillBase {
	return BillBase{TotalAmount: bill.TotalAmount, Discount: bill.Discount}
}

// Totals is the aggregate money state of a bill derived from its receipts.
// Discount is the bill-level discount plus every receipt discount.
type Totals struct {
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	Discount        decimal.Decimal `json:"discount"`
	ReceiptDiscount decimal.Decimal `json:"receipt_discount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	DueAmount       decimal.Decimal `json:"due_amount"`
}

// DeriveBillTotals recomputes a bill's aggregate state from the full receipt history.
// Receipt tax amounts are taken as recorded; historical tax is never recomputed.
func DeriveBillTotals(bill BillBase, receipts []entity.Receipt) Totals {
	paid := decimal.Zero
	receiptDiscount := decimal.Zero
	tax := decimal.Zero
	for i := range receipts {
		paid = paid.Add(receipts[i].Amount)
		receiptDiscount = receiptDiscount.Add(receipts[i].Discount)
		tax = tax.Add(receipts[i].TaxAmount)
	}

	discount := bill.Discount.Add(receiptDiscount)
	grand := bill.TotalAmount.Add(tax).Sub(discount)

	return Totals{
		PaidAmount:      paid.Round(2),
		Discount:        discount.Round(2),
		ReceiptDiscount: receiptDiscount.Round(2),
		TaxAmount:       tax.Round(2),
		GrandTotal:      grand.Round(2),
		DueAmount:       grand.Sub(paid).Round(2),
	}
}

// Status derives the payment status for these totals.
func (t Totals) Status() enum.PaymentStatus {
	return DerivePaymentStatus(t.DueAmount, t.GrandTotal)
}

// ApplyTotals writes the derived fields and payment status onto the bill.
func ApplyTotals(bill *entity.Bill, receipts []entity.Receipt) Totals {
	totals := DeriveBillTotals(BaseOf(bill), receipts)
	bill.TotalAmount = bill.TotalAmount.Round(2)
	bill.Discount = bill.Discount.Round(2)
	bill.ReceiptDiscount = totals.ReceiptDiscount
	bill.TaxAmount = totals.TaxAmount
	bill.GrandTotal = totals.GrandTotal
	bill.PaidAmount = totals.PaidAmount
	bill.DueAmount = totals.DueAmount
	bill.PaymentStatus = totals.Status()
	return totals
}

// AmountTrack is the snapshot of a bill's money state used to validate the next receipt.
type AmountTrack struct {
	Total     decimal.Decimal `json:"total"`
	Grand     decimal.Decimal `json:"grand"`
	Discount  decimal.Decimal `json:"discount"`
	Paid      decimal.Decimal `json:"paid"`
	Due       decimal.Decimal `json:"due"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

// NewAmountTrack builds the snapshot from a bill and its receipts. When editing a
// receipt, pass its number as exclude so its prior contribution does not count
// against itself; pass 0 otherwise.
func NewAmountTrack(bill BillBase, receipts []entity.Receipt, exclude int64) AmountTrack {
	considered := receipts
	if exclude != 0 {
		considered = make([]entity.Receipt, 0, len(receipts))
		for i := range receipts {
			if receipts[i].ReceiptNumber != exclude {
				considered = append(considered, receipts[i])
			}
		}
	}

	totals := DeriveBillTotals(bill, considered)
	return AmountTrack{
		Total:     bill.TotalAmount.Round(2),
		Grand:     totals.GrandTotal,
		Discount:  totals.Discount,
		Paid:      totals.PaidAmount,
		Due:       totals.DueAmount,
		TaxAmount: totals.TaxAmount,
	}
}
