package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors shared by expense entry.
var (
	ErrEmptyCategory    = errors.New("category is required")
	ErrNonPositiveTotal = errors.New("amount must be greater than zero")
	ErrEmptyUser        = errors.New("user id is required")
)

// Expense represents one personal expense owned by a single user.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// UserID is the owner of this expense.
	UserID string `json:"user_id"`

	// Category is a free-form spending category (e.g. "food", "travel").
	Category string `json:"category"`

	// Description is an optional human-readable note.
	Description string `json:"description,omitempty"`

	// Amount is the expense total, always positive.
	Amount decimal.Decimal `json:"amount"`

	// SpentAt is when the money was actually spent, which may differ
	// from when the row was created.
	SpentAt time.Time `json:"spent_at"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Validate checks the local invariants enforced before an expense row is
// submitted to storage.
func (e *Expense) Validate() error {
	if e.UserID == "" {
		return ErrEmptyUser
	}
	if e.Category == "" {
		return ErrEmptyCategory
	}
	if !e.Amount.IsPositive() {
		return ErrNonPositiveTotal
	}
	return nil
}
