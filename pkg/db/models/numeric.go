package models

import "github.com/shopspring/decimal"

// NumericScale is the fractional precision of every numeric(12,4) column.
const NumericScale = 4

var numericLimit = decimal.New(1, 12-NumericScale)

// NumericProblem returns why d cannot be stored in a numeric(12,4) column
// unchanged, or "" when it fits.
func NumericProblem(d decimal.Decimal) string {
	if !d.Equal(d.Truncate(NumericScale)) {
		return "must have at most 4 decimal places"
	}
	if d.Abs().GreaterThanOrEqual(numericLimit) {
		return "must be less than 100000000"
	}
	return ""
}
