package reconciliation

import (
	"errors"

	"github.com/shopspring/decimal"
)

// RejectionReason identifies why a proposed receipt write was refused.
type RejectionReason string

const (
	ReasonInvalidAmount         RejectionReason = "InvalidAmount"
	ReasonMissingBillReference  RejectionReason = "MissingBillReference"
	ReasonMissingPaymentMethod  RejectionReason = "MissingPaymentMethod"
	ReasonMissingPaymentDate    RejectionReason = "MissingPaymentDate"
	ReasonMissingCustomerName   RejectionReason = "MissingCustomerName"
	ReasonBillAlreadyPaid       RejectionReason = "BillAlreadyPaid"
	ReasonExcessiveOverpayment  RejectionReason = "ExcessiveOverpayment"
	ReasonInvalidDiscount       RejectionReason = "InvalidDiscount"
	ReasonNonPositiveNetPayment RejectionReason = "NonPositiveNetPayment"
	ReasonInvalidTaxAmount      RejectionReason = "InvalidTaxAmount"
	ReasonMalformedTax          RejectionReason = "MalformedTax"
)

// Rejection is returned when a receipt fails validation. It is a user-facing
// outcome, not a system fault.
type Rejection struct {
	Reason  RejectionReason
	Message string
	// Overpayment is set for ReasonExcessiveOverpayment.
	Overpayment decimal.Decimal
}

func (r *Rejection) Error() string {
	return r.Message
}

// AsRejection extracts a Rejection from err, if there is one.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

func reject(reason RejectionReason, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message}
}
