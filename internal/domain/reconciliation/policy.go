package reconciliation

import (
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultOverpaymentTolerance is the slack, in currency units, accepted above the
// exact due amount before a payment is refused.
var DefaultOverpaymentTolerance = decimal.NewFromInt(5)

// Policy holds the shop-configurable knobs of the reconciler.
type Policy struct {
	OverpaymentTolerance decimal.Decimal
	// StrictTax rejects receipts carrying malformed tax lines instead of
	// silently dropping those lines from the calculation.
	StrictTax bool
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		OverpaymentTolerance: DefaultOverpaymentTolerance,
	}
}

// Reconciler validates receipts against a bill's outstanding balance.
// It holds no state besides its policy and is safe for concurrent use.
type Reconciler struct {
	policy Policy
	tax    TaxCalculator
}

// New creates a reconciler for the given policy.
func New(policy Policy) *Reconciler {
	if policy.OverpaymentTolerance.IsNegative() {
		policy.OverpaymentTolerance = decimal.Zero
	}
	return &Reconciler{
		policy: policy,
		tax:    TaxCalculator{Strict: policy.StrictTax},
	}
}

// Policy returns the reconciler's policy.
func (r *Reconciler) Policy() Policy {
	return r.policy
}

// ComputeTax applies the reconciler's tax calculator to base.
func (r *Reconciler) ComputeTax(base decimal.Decimal, taxes []entity.TaxLine) (decimal.Decimal, error) {
	return r.tax.Compute(base, taxes)
}
