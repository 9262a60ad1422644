package reconciliation

import (
	"fmt"

	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TaxCalculator computes the total tax owed on an amount.
type TaxCalculator struct {
	// Strict turns malformed lines into a MalformedTax rejection.
	Strict bool
}

// ComputeTax returns the tax owed on base for the given lines, dropping malformed lines.
// The sum is rounded once, to 2 decimal places.
func ComputeTax(base decimal.Decimal, taxes []entity.TaxLine) decimal.Decimal {
	total, _ := TaxCalculator{}.Compute(base, taxes)
	return total
}

// Compute returns the tax owed on base. Percentage lines contribute
// base * pct / 100 and Fixed lines contribute their value as a flat amount.
func (c TaxCalculator) Compute(base decimal.Decimal, taxes []entity.TaxLine) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, line := range taxes {
		if !wellFormed(line) {
			if c.Strict {
				return decimal.Zero, reject(ReasonMalformedTax,
					fmt.Sprintf("Tax line %d (%q) is malformed", i+1, line.TaxName))
			}
			continue
		}
		total = total.Add(contribution(base, line))
	}
	return total.Round(2), nil
}

func contribution(base decimal.Decimal, line entity.TaxLine) decimal.Decimal {
	if line.TaxType == enum.TaxTypeFixed {
		return line.TaxPercentage
	}
	return base.Mul(line.TaxPercentage).Div(hundred)
}

func wellFormed(line entity.TaxLine) bool {
	return line.TaxType.IsValid() && !line.TaxPercentage.IsNegative()
}
