// Package amount coerces loosely typed money values into decimals.
package amount

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Max is the largest magnitude accepted as a loan amount.
var Max = decimal.New(1, 15)

// Parse converts a stored loan amount to a decimal. Empty, non-numeric,
// exponent-notation or out-of-range input yields zero; it never fails.
func Parse(raw string) decimal.Decimal {
	d, ok := parse(raw)
	if !ok {
		return decimal.Zero
	}
	return d
}

// Valid reports whether raw is a plain number within Max.
func Valid(raw string) bool {
	_, ok := parse(raw)
	return ok
}

// Sum adds the coerced value of every raw amount.
func Sum(raws []string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range raws {
		total = total.Add(Parse(r))
	}
	return total
}

func parse(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.ContainsAny(s, "eE") {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil || d.Abs().GreaterThan(Max) {
		return decimal.Zero, false
	}
	return d, true
}
