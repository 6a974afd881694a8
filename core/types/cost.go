// Package types - Money helpers
package types

import "github.com/shopspring/decimal"

// Hundred is the percentage denominator
var Hundred = decimal.NewFromInt(100)

// Percent returns pct percent of amount
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(Hundred)
}

// Ratio returns part/whole as a percentage, or zero when whole is zero
func Ratio(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(Hundred).Div(whole)
}

// NonNegative clamps negative amounts to zero
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Optional wraps a value as a set NullDecimal
func Optional(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// Cents rounds to two decimal places for display
func Cents(d decimal.Decimal) string {
	return d.StringFixedBank(2)
}
