package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement represents a payment between group members to clear debts.
// The payment itself happens out of band (UPI app); this row records it
// so balances reflect it.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// GroupID is the group this settlement belongs to.
	GroupID string `json:"group_id"`

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string `json:"from_user_id"`

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string `json:"to_user_id"`

	// Amount is the payment amount, always positive.
	Amount decimal.Decimal `json:"amount"`

	// Note is an optional description for the settlement.
	Note string `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}
