// Package finance holds the money arithmetic used by quotes, purchase
// orders, shipments and bills. Everything here is pure; callers load the
// inputs and persist the outputs.
package finance

import (
	"strings"

	"enquiry-app/apperr"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Coerce reads a text amount. nil, "" and "null" count as zero.
func Coerce(v *string) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, nil
	}
	return CoerceString(*v)
}

func CoerceString(v string) (decimal.Decimal, error) {
	s := strings.TrimSpace(v)
	if s == "" || s == "null" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperr.NewValidation("%q is not a valid number", v)
	}
	return d, nil
}

// Round2 rounds half away from zero to two places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns base * pct / 100 rounded to two places.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return Round2(base.Mul(pct).Div(hundred))
}

// EffectiveUnitPrice prefers the price captured on the selection over the
// catalog price.
func EffectiveUnitPrice(final *string, catalog string) (decimal.Decimal, error) {
	if final != nil {
		if s := strings.TrimSpace(*final); s != "" && s != "null" {
			return CoerceString(s)
		}
	}
	return CoerceString(catalog)
}

// Sum adds coerced quantities.
func Sum(values []string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, v := range values {
		d, err := CoerceString(v)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(d)
	}
	return total, nil
}
