package service

import (
	"errors"
	"fmt"
)

// ErrNothingToSettle is returned by SettleUp when the member's balance is
// already within the settlement tolerance of zero.
var ErrNothingToSettle = errors.New("nothing to settle")

// ErrNotAMember is returned when an operation names a user outside the
// group's member set.
var ErrNotAMember = errors.New("user is not a member of the group")

// PartialWriteError reports the two-step group-expense write failing after
// the first step: the expense row landed but its splits did not. The service
// attempts a compensating delete of the orphaned expense; Compensated
// records whether that delete succeeded. When it did not, the expense is
// left in storage without splits and the caller must surface the ID.
type PartialWriteError struct {
	ExpenseID   string
	Compensated bool
	Err         error
}

func (e *PartialWriteError) Error() string {
	if e.Compensated {
		return fmt.Sprintf("failed to write splits for expense %s (expense rolled back): %v", e.ExpenseID, e.Err)
	}
	return fmt.Sprintf("failed to write splits for expense %s and rollback failed; expense is left in storage without splits: %v", e.ExpenseID, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
