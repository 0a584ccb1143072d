package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SplitType describes how a group expense total is divided among members.
type SplitType string

const (
	// SplitEqual divides the total evenly across the split set.
	SplitEqual SplitType = "equal"

	// SplitUnequal takes explicit per-member amounts.
	SplitUnequal SplitType = "unequal"

	// SplitPercentage divides by per-member percentages summing to 100.
	SplitPercentage SplitType = "percentage"

	// SplitShares divides proportionally to per-member share counts.
	SplitShares SplitType = "shares"
)

// Valid reports whether t is one of the known split types.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitUnequal, SplitPercentage, SplitShares:
		return true
	}
	return false
}

// GroupExpense represents one shared expense paid by a single member of a
// group. The expense row itself carries only the total and the payer; how
// the total is owed back is carried by the expense's Split rows.
type GroupExpense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID string `json:"group_id"`

	// PaidBy is the user ID of the member who fronted the full amount.
	PaidBy string `json:"paid_by"`

	// Description is a human-readable note (e.g. "Dinner at Mani's").
	Description string `json:"description,omitempty"`

	// Amount is the full expense total, always positive.
	Amount decimal.Decimal `json:"amount"`

	// SplitType records how the splits were derived at entry time.
	// The balance engine does not interpret it; it reads the Split rows.
	SplitType SplitType `json:"split_type"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Validate checks the local invariants enforced before a group expense row
// is submitted to storage. Split reconciliation against the total is a
// separate check (see calculator.ValidateSplits); this covers only the
// expense row itself.
func (e *GroupExpense) Validate() error {
	if e.GroupID == "" {
		return fmt.Errorf("group id is required")
	}
	if e.PaidBy == "" {
		return fmt.Errorf("payer is required")
	}
	if !e.Amount.IsPositive() {
		return ErrNonPositiveTotal
	}
	if !e.SplitType.Valid() {
		return fmt.Errorf("unknown split type %q", e.SplitType)
	}
	return nil
}

// Split represents one member's assigned share of a group expense. The sum
// of an expense's splits equals the expense total; that invariant is enforced
// at entry time, and the rows are written together with their expense.
type Split struct {
	ID        string          `json:"id"`
	ExpenseID string          `json:"expense_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
}
