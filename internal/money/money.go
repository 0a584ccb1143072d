// Package money provides the numeric conventions shared by everything that
// touches currency: parsing of user-supplied amounts, presentation formatting,
// and the tolerance used for "is this settled" comparisons.
//
// Amounts are shopspring decimals end to end. Accumulation never rounds;
// rounding to two fractional digits happens only at presentation time.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned by Parse for malformed, zero, or negative input.
var ErrInvalidAmount = errors.New("invalid amount")

// Epsilon is the tolerance for currency comparisons: 0.01 currency units.
// Split entry is user-supplied and may not reconcile exactly, so balance and
// reconciliation checks compare within this tolerance, never exactly.
var Epsilon = decimal.New(1, -2)

// Parse converts a user-supplied decimal string to an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for malformed input, explicit signs, zero, or
// negative values; amounts entering the system are always positive.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Format renders an amount with exactly two fractional digits for display
// and for the settlement deep link contract.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// WithinEpsilon reports whether a and b differ by at most Epsilon.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}

// IsSettled reports whether a balance is close enough to zero to count as
// settled.
func IsSettled(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Epsilon)
}
