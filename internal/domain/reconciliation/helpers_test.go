package reconciliation

import (
	"testing"
	"time"

	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func percentage(pct string) entity.TaxLine {
	return entity.TaxLine{TaxName: "GST", TaxType: enum.TaxTypePercentage, TaxPercentage: dec(pct)}
}

func fixed(amount string) entity.TaxLine {
	return entity.TaxLine{TaxName: "Service", TaxType: enum.TaxTypeFixed, TaxPercentage: dec(amount)}
}

var day = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func receipt(number int64, amount, discount, tax string, paymentType enum.PaymentType, offsetDays int) entity.Receipt {
	return entity.Receipt{
		ReceiptNumber: number,
		BillNumber:    1,
		Amount:        dec(amount),
		Discount:      dec(discount),
		TaxAmount:     dec(tax),
		PaymentMethod: enum.PaymentMethodCash,
		PaymentDate:   day.AddDate(0, 0, offsetDays),
		PaymentType:   paymentType,
	}
}

func input(amount, discount string, taxes ...entity.TaxLine) ReceiptInput {
	return ReceiptInput{
		BillNumber:    1,
		Name:          "Asha",
		Amount:        dec(amount),
		Discount:      dec(discount),
		Tax:           taxes,
		PaymentMethod: enum.PaymentMethodCash,
		PaymentDate:   day,
	}
}
