package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxType_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  TaxType
		valid bool
	}{
		{`"Percentage"`, TaxTypePercentage, true},
		{`"percentage"`, TaxTypePercentage, true},
		{`"FIXED"`, TaxTypeFixed, true},
		{`"compound"`, TaxType("compound"), false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got TaxType
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, got.IsValid())
		})
	}
}

func TestPaymentMethod_UnmarshalJSON(t *testing.T) {
	var m PaymentMethod
	require.NoError(t, json.Unmarshal([]byte(`"upi"`), &m))
	assert.Equal(t, PaymentMethodUPI, m)
	assert.True(t, m.IsValid())

	require.NoError(t, json.Unmarshal([]byte(`"cheque"`), &m))
	assert.False(t, m.IsValid())

	assert.Error(t, json.Unmarshal([]byte(`12`), &m))
}

func TestPaymentStatus_Rank(t *testing.T) {
	assert.Less(t, PaymentStatusUnpaid.Rank(), PaymentStatusPartiallyPaid.Rank())
	assert.Less(t, PaymentStatusPartiallyPaid.Rank(), PaymentStatusPaid.Rank())
	assert.True(t, PaymentStatusPartiallyPaid.IsValid())
	assert.False(t, PaymentStatus("Overdue").IsValid())
}
