package enum

import (
	"encoding/json"
	"strings"
)

// PaymentMethod is the instrument a receipt was paid with
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodOnline PaymentMethod = "Online"
	PaymentMethodUPI    PaymentMethod = "UPI"
	PaymentMethodCard   PaymentMethod = "Card"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodOnline, PaymentMethodUPI, PaymentMethodCard:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "cash":
		*m = PaymentMethodCash
	case "online":
		*m = PaymentMethodOnline
	case "upi":
		*m = PaymentMethodUPI
	case "card":
		*m = PaymentMethodCard
	default:
		*m = PaymentMethod(str)
	}
	return nil
}
