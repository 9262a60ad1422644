package enum

import (
	"encoding/json"
	"strings"
)

// TaxType represents how a tax line is applied to a payment amount
type TaxType string

const (
	TaxTypePercentage TaxType = "Percentage"
	TaxTypeFixed      TaxType = "Fixed"
)

// IsValid checks if the tax type is one of the known types
func (t TaxType) IsValid() bool {
	return t == TaxTypePercentage || t == TaxTypeFixed
}

func (t TaxType) String() string {
	return string(t)
}

// UnmarshalJSON accepts the type name in any letter case.
// Unknown names are kept as-is so the tax calculator can decide what to do with them.
func (t *TaxType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "percentage":
		*t = TaxTypePercentage
	case "fixed":
		*t = TaxTypeFixed
	default:
		*t = TaxType(str)
	}
	return nil
}
