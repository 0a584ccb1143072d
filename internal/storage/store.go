// Package storage provides abstractions for the application's persistent
// data, which lives entirely in the hosted backend.
package storage

import (
	"context"
	"time"

	"github.com/Shritej1000/Spiltzee/internal/models"
)

// ExpenseFilter narrows a personal expense listing. Zero values mean
// "no constraint".
type ExpenseFilter struct {
	// From and To bound SpentAt: From inclusive, To exclusive.
	From time.Time
	To   time.Time

	// Category restricts to one spending category.
	Category string

	// Limit caps the number of returned rows.
	Limit int
}

// Store defines the data operations the services need. The production
// implementation issues row-level queries against the hosted backend
// (storage/rest); tests substitute an in-memory fake. Row-level access
// control is enforced by the backend, not re-checked here.
type Store interface {
	// UpsertProfile creates or updates the user's profile row.
	UpsertProfile(ctx context.Context, user *models.User) error

	// GetProfile retrieves one user's profile.
	GetProfile(ctx context.Context, userID string) (*models.User, error)

	// ListProfiles retrieves all profiles. Requires service-role access;
	// used by the monthly reporter, not the interactive client.
	ListProfiles(ctx context.Context) ([]models.User, error)

	// CreateExpense persists a new personal expense. The ID and
	// CreatedAt fields are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpenses retrieves the user's personal expenses matching the
	// filter, newest first.
	ListExpenses(ctx context.Context, userID string, f ExpenseFilter) ([]models.Expense, error)

	// DeleteExpense removes one of the user's personal expenses.
	DeleteExpense(ctx context.Context, userID, expenseID string) error

	// CreateGroup persists a new group and its creator's membership.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForMember retrieves every group the user belongs to.
	ListGroupsForMember(ctx context.Context, userID string) ([]models.Group, error)

	// AddGroupMembers adds users to a group. Adding an existing member
	// is a no-op.
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error

	// ListGroupMembers retrieves a group's memberships with each
	// member's profile fields populated.
	ListGroupMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)

	// CreateGroupExpense persists a new shared expense row. Its splits
	// are written separately with CreateSplits.
	CreateGroupExpense(ctx context.Context, expense *models.GroupExpense) error

	// ListGroupExpenses retrieves a group's shared expenses, newest
	// first.
	ListGroupExpenses(ctx context.Context, groupID string) ([]models.GroupExpense, error)

	// DeleteGroupExpense removes a shared expense and its splits.
	DeleteGroupExpense(ctx context.Context, groupID, expenseID string) error

	// CreateSplits persists an expense's split rows in one batch.
	CreateSplits(ctx context.Context, splits []models.Split) error

	// ListSplits retrieves all splits belonging to the given expenses.
	ListSplits(ctx context.Context, expenseIDs []string) ([]models.Split, error)

	// CreateSettlement records a settlement payment.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlements retrieves a group's recorded settlements.
	ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error)
}
