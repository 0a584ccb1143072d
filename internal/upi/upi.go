// Package upi builds UPI deep links for settling group debts. Constructing
// the link is pure string formatting; navigating to it (which opens the
// payment app) is the caller's side effect.
package upi

import (
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/Shritej1000/Spiltzee/internal/money"
)

// Currency is the fixed currency code carried by every payment link.
const Currency = "INR"

// PaymentRequest holds the fields of a pre-filled UPI payment.
type PaymentRequest struct {
	// PayeeAddress is the creditor's UPI virtual payment address,
	// opaque to this package.
	PayeeAddress string

	// PayeeName is the creditor's display name shown in the payment app.
	PayeeName string

	// Amount is the payment amount; formatted with exactly two
	// fractional digits in the link.
	Amount decimal.Decimal

	// Note is a free-text reference shown to both parties.
	Note string
}

// Link renders the upi://pay deep link for this request. Parameters are
// query-escaped and emitted in lexicographic order, so the same request
// always yields the same string.
func (r PaymentRequest) Link() string {
	params := url.Values{}
	params.Set("am", money.Format(r.Amount))
	params.Set("cu", Currency)
	params.Set("pa", r.PayeeAddress)
	params.Set("pn", r.PayeeName)
	if r.Note != "" {
		params.Set("tn", r.Note)
	}
	return "upi://pay?" + params.Encode()
}
