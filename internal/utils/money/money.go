// Package money routes all currency-bearing arithmetic through
// shopspring/decimal at an explicit currency scale, so rounding is
// deterministic and never touches native floating point.
package money

import (
	"fmt"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Parse converts a decimal string into a Decimal.
// Non-numeric input fails with a validation error.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", apperrors.ErrValidation, s)
	}
	return d, nil
}

// Normalize re-expresses an amount at the target scale.
func Normalize(a decimal.Decimal, scale int32) decimal.Decimal {
	return a.Round(scale)
}

// Add returns a+b at the given scale.
func Add(a, b decimal.Decimal, scale int32) decimal.Decimal {
	return a.Add(b).Round(scale)
}

// Sub returns a-b at the given scale.
func Sub(a, b decimal.Decimal, scale int32) decimal.Decimal {
	return a.Sub(b).Round(scale)
}

// Mul returns a*b at the given scale.
func Mul(a, b decimal.Decimal, scale int32) decimal.Decimal {
	return a.Mul(b).Round(scale)
}

// Cmp compares a and b at the given scale, returning -1, 0 or 1.
func Cmp(a, b decimal.Decimal, scale int32) int {
	return a.Round(scale).Cmp(b.Round(scale))
}

// IsZero reports whether the amount is exactly zero at the given scale.
func IsZero(a decimal.Decimal, scale int32) bool {
	return a.Round(scale).IsZero()
}

// Format renders an amount with exactly scale decimal places.
func Format(a decimal.Decimal, scale int32) string {
	return a.StringFixed(scale)
}
