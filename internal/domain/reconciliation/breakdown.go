package reconciliation

import (
	"sort"

	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ReceiptBreakdown is the paid/due view of a single receipt.
type ReceiptBreakdown struct {
	ReceiptNumber int64            `json:"receipt_number"`
	BillNumber    int64            `json:"bill_number"`
	Amount        decimal.Decimal  `json:"amount"`
	Discount      decimal.Decimal  `json:"discount"`
	TaxAmount     decimal.Decimal  `json:"tax_amount"`
	NetPayment    decimal.Decimal  `json:"net_payment"`
	DueBefore     decimal.Decimal  `json:"due_before"`
	DueAfter      decimal.Decimal  `json:"due_after"`
	PaymentType   enum.PaymentType `json:"payment_type"`
}

// SortReceipts orders receipts by payment date, then receipt number.
func SortReceipts(receipts []entity.Receipt) []entity.Receipt {
	sorted := make([]entity.Receipt, len(receipts))
	copy(sorted, receipts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PaymentDate.Equal(sorted[j].PaymentDate) {
			return sorted[i].PaymentDate.Before(sorted[j].PaymentDate)
		}
		return sorted[i].ReceiptNumber < sorted[j].ReceiptNumber
	})
	return sorted
}

// DeriveReceiptBreakdown computes the due amount before and after the given
// receipt, replaying the bill's receipts in payment order. The second return
// value is false when the receipt is not part of the history.
func DeriveReceiptBreakdown(bill BillBase, receipts []entity.Receipt, receiptNumber int64) (*ReceiptBreakdown, bool) {
	ordered := SortReceipts(receipts)
	for i := range ordered {
		if ordered[i].ReceiptNumber != receiptNumber {
			continue
		}
		rc := ordered[i]
		before := DeriveBillTotals(bill, ordered[:i])
		after := DeriveBillTotals(bill, ordered[:i+1])
		return &ReceiptBreakdown{
			ReceiptNumber: rc.ReceiptNumber,
			BillNumber:    rc.BillNumber,
			Amount:        rc.Amount.Round(2),
			Discount:      rc.Discount.Round(2),
			TaxAmount:     rc.TaxAmount.Round(2),
			NetPayment:    rc.NetPayment().Round(2),
			DueBefore:     before.DueAmount,
			DueAfter:      after.DueAmount,
			PaymentType:   rc.PaymentType,
		}, true
	}
	return nil, false
}
