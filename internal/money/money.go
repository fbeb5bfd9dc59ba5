// Package money holds the one place where shop prices cross into the
// integer minor units payment processors expect.
package money

import "github.com/shopspring/decimal"

// ToMinorUnits converts a decimal price to cents, rounding half away from zero.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// Format renders a price with a dollar sign and two decimals.
func Format(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
