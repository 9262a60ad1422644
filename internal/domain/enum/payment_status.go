package enum

// PaymentStatus is the derived settlement state of a bill
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "Unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentStatusPaid          PaymentStatus = "Paid"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known payment status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusPaid:
		return true
	}
	return false
}

// Rank orders statuses from Unpaid (0) to Paid (2).
func (s PaymentStatus) Rank() int {
	switch s {
	case PaymentStatusPartiallyPaid:
		return 1
	case PaymentStatusPaid:
		return 2
	default:
		return 0
	}
}

// PaymentType classifies a receipt by whether it settled the bill
type PaymentType string

const (
	PaymentTypeAdvance   PaymentType = "advance"
	PaymentTypeFullyPaid PaymentType = "fullyPaid"
)

func (t PaymentType) String() string {
	return string(t)
}
