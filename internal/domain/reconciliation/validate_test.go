package reconciliation

import (
	"testing"
	"time"

	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackWithDue(due string) AmountTrack {
	return AmountTrack{Total: dec(due), Grand: dec(due), Paid: dec("0"), Due: dec(due)}
}

func TestValidateReceiptRejections(t *testing.T) {
	r := New(DefaultPolicy())
	open := trackWithDue("100")

	tests := []struct {
		name   string
		mutate func(in *ReceiptInput)
		track  AmountTrack
		reason RejectionReason
	}{
		{"zero amount", func(in *ReceiptInput) { in.Amount = dec("0") }, open, ReasonInvalidAmount},
		{"negative amount", func(in *ReceiptInput) { in.Amount = dec("-1") }, open, ReasonInvalidAmount},
		{"missing bill", func(in *ReceiptInput) { in.BillNumber = 0 }, open, ReasonMissingBillReference},
		{"missing method", func(in *ReceiptInput) { in.PaymentMethod = "" }, open, ReasonMissingPaymentMethod},
		{"unknown method", func(in *ReceiptInput) { in.PaymentMethod = enum.PaymentMethod("Cheque") }, open, ReasonMissingPaymentMethod},
		{"missing date", func(in *ReceiptInput) { in.PaymentDate = time.Time{} }, open, ReasonMissingPaymentDate},
		{"missing name", func(in *ReceiptInput) { in.Name = "  " }, open, ReasonMissingCustomerName},
		{"already paid", func(in *ReceiptInput) {}, AmountTrack{Grand: dec("100"), Paid: dec("100"), Due: dec("0")}, ReasonBillAlreadyPaid},
		{"overpaid", func(in *ReceiptInput) { in.Amount = dec("106") }, open, ReasonExcessiveOverpayment},
		{"negative discount", func(in *ReceiptInput) { in.Discount = dec("-5") }, open, ReasonInvalidDiscount},
		{"discount cancels amount", func(in *ReceiptInput) { in.Amount = dec("5"); in.Discount = dec("-5") }, open, ReasonInvalidDiscount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := input("50", "0")
			tt.mutate(&in)

			acc, err := r.ValidateReceipt(in, tt.track)
			require.Error(t, err)
			assert.Nil(t, acc)

			rej, ok := AsRejection(err)
			require.True(t, ok)
			assert.Equal(t, tt.reason, rej.Reason)
			assert.NotEmpty(t, rej.Message)
		})
	}
}

func TestValidateReceiptCheckOrder(t *testing.T) {
	r := New(DefaultPolicy())

	// Everything is wrong; the amount check runs first.
	_, err := r.ValidateReceipt(ReceiptInput{}, AmountTrack{Grand: dec("1"), Paid: dec("1")})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonInvalidAmount, rej.Reason)

	// Already paid wins over overpayment.
	_, err = r.ValidateReceipt(input("1000", "0"), AmountTrack{Grand: dec("100"), Paid: dec("100"), Due: dec("0")})
	rej, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonBillAlreadyPaid, rej.Reason)
}

func TestValidateReceiptOverpaymentBoundary(t *testing.T) {
	r := New(DefaultPolicy())
	track := trackWithDue("100")

	acc, err := r.ValidateReceipt(input("104", "0"), track)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentTypeFullyPaid, acc.PaymentType)
	assertDecimal(t, "4", acc.Overpayment)
	assertDecimal(t, "-4", acc.RemainingDue)

	acc, err = r.ValidateReceipt(input("105", "0"), track)
	require.NoError(t, err)
	assertDecimal(t, "5", acc.Overpayment)

	_, err = r.ValidateReceipt(input("106", "0"), track)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonExcessiveOverpayment, rej.Reason)
	assertDecimal(t, "6", rej.Overpayment)

	// Discount counts toward the credited value.
	_, err = r.ValidateReceipt(input("100", "6"), track)
	rej, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonExcessiveOverpayment, rej.Reason)
}

func TestValidateReceiptConfiguredTolerance(t *testing.T) {
	strict := New(Policy{OverpaymentTolerance: dec("0")})
	_, err := strict.ValidateReceipt(input("100.01", "0"), trackWithDue("100"))
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonExcessiveOverpayment, rej.Reason)

	clamped := New(Policy{OverpaymentTolerance: dec("-10")})
	assertDecimal(t, "0", clamped.Policy().OverpaymentTolerance)

	generous := New(Policy{OverpaymentTolerance: dec("50")})
	_, err = generous.ValidateReceipt(input("140", "0"), trackWithDue("100"))
	assert.NoError(t, err)
}

func TestValidateReceiptAlreadyPaidIgnoresAmount(t *testing.T) {
	r := New(DefaultPolicy())
	track := AmountTrack{Grand: dec("500"), Paid: dec("500"), Due: dec("0")}

	for _, amount := range []string{"0.01", "1", "500", "10000"} {
		_, err := r.ValidateReceipt(input(amount, "0"), track)
		rej, ok := AsRejection(err)
		require.True(t, ok, amount)
		assert.Equal(t, ReasonBillAlreadyPaid, rej.Reason, amount)
	}
}

func TestValidateReceiptAcceptance(t *testing.T) {
	r := New(DefaultPolicy())

	acc, err := r.ValidateReceipt(input("500", "0", percentage("10")), trackWithDue("1000"))
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentTypeAdvance, acc.PaymentType)
	assertDecimal(t, "50", acc.TaxAmount)
	assertDecimal(t, "500", acc.NetPayment)
	assertDecimal(t, "500", acc.RemainingDue)
	assertDecimal(t, "0", acc.Overpayment)

	acc, err = r.ValidateReceipt(input("990", "10"), trackWithDue("1000"))
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentTypeFullyPaid, acc.PaymentType)
	assertDecimal(t, "0", acc.RemainingDue)
}

func TestValidateReceiptStrictTax(t *testing.T) {
	r := New(Policy{OverpaymentTolerance: DefaultOverpaymentTolerance, StrictTax: true})
	bad := entity.TaxLine{TaxName: "Bogus", TaxType: enum.TaxType("Compound"), TaxPercentage: dec("10")}

	_, err := r.ValidateReceipt(input("100", "0", bad), trackWithDue("1000"))
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonMalformedTax, rej.Reason)

	lenient := New(DefaultPolicy())
	acc, err := lenient.ValidateReceipt(input("100", "0", bad), trackWithDue("1000"))
	require.NoError(t, err)
	assertDecimal(t, "0", acc.TaxAmount)
}
