package reconciliation

import (
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ReceiptInput is a receipt proposed for creation or edit.
type ReceiptInput struct {
	BillNumber    int64
	Name          string // customer name on the bill
	Amount        decimal.Decimal
	Discount      decimal.Decimal
	Tax           []entity.TaxLine
	PaymentMethod enum.PaymentMethod
	PaymentDate   time.Time
}

// NetPayment is amount + discount, the value credited toward the due amount.
func (in ReceiptInput) NetPayment() decimal.Decimal {
	return in.Amount.Add(in.Discount)
}

// Acceptance carries the fields derived for an accepted receipt.
type Acceptance struct {
	PaymentType  enum.PaymentType
	TaxAmount    decimal.Decimal
	NetPayment   decimal.Decimal
	RemainingDue decimal.Decimal
	// Overpayment is positive when the payment used part of the tolerance window.
	Overpayment decimal.Decimal
}

// ValidateReceipt checks a candidate receipt against the bill snapshot. The checks
// run in a fixed order and the first failure is returned as a *Rejection.
//
// When editing, track must already exclude the receipt being edited.
func (r *Reconciler) ValidateReceipt(in ReceiptInput, track AmountTrack) (*Acceptance, error) {
	if !in.Amount.IsPositive() {
		return nil, reject(ReasonInvalidAmount, "Amount must be greater than zero")
	}
	if in.BillNumber <= 0 {
		return nil, reject(ReasonMissingBillReference, "Bill reference is required")
	}
	if in.PaymentMethod == "" {
		return nil, reject(ReasonMissingPaymentMethod, "Payment method is required")
	}
	if !in.PaymentMethod.IsValid() {
		return nil, reject(ReasonMissingPaymentMethod,
			fmt.Sprintf("Payment method %q is not supported", in.PaymentMethod))
	}
	if in.PaymentDate.IsZero() {
		return nil, reject(ReasonMissingPaymentDate, "Payment date is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, reject(ReasonMissingCustomerName, "Customer name is required on the bill")
	}
	if track.Paid.GreaterThanOrEqual(track.Grand) {
		return nil, reject(ReasonBillAlreadyPaid, "Bill is already fully paid")
	}

	net := in.NetPayment()
	overpayment := net.Sub(track.Due)
	if overpayment.GreaterThan(r.policy.OverpaymentTolerance) {
		return nil, &Rejection{
			Reason:      ReasonExcessiveOverpayment,
			Message:     fmt.Sprintf("Payment exceeds the due amount by %s", overpayment.StringFixed(2)),
			Overpayment: overpayment.Round(2),
		}
	}

	if in.Discount.IsNegative() {
		return nil, reject(ReasonInvalidDiscount, "Discount cannot be negative")
	}
	if !net.IsPositive() {
		return nil, reject(ReasonNonPositiveNetPayment, "Amount plus discount must be greater than zero")
	}

	taxAmount, err := r.tax.Compute(in.Amount, in.Tax)
	if err != nil {
		return nil, err
	}
	if taxAmount.IsNegative() {
		return nil, reject(ReasonInvalidTaxAmount, "Tax amount cannot be negative")
	}

	remaining := track.Due.Sub(net)
	paymentType := enum.PaymentTypeAdvance
	if !remaining.IsPositive() {
		paymentType = enum.PaymentTypeFullyPaid
	}

	acc := &Acceptance{
		PaymentType:  paymentType,
		TaxAmount:    taxAmount,
		NetPayment:   net.Round(2),
		RemainingDue: remaining.Round(2),
		Overpayment:  decimal.Zero,
	}
	if overpayment.IsPositive() {
		acc.Overpayment = overpayment.Round(2)
	}
	return acc, nil
}
