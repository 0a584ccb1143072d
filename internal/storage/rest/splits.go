package rest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Shritej1000/Spiltzee/internal/models"
)

// CreateGroupExpense persists a new shared expense row. Writing the splits
// is the caller's next step; see the service layer for the compensation
// applied when that step fails.
func (s *RestStore) CreateGroupExpense(ctx context.Context, expense *models.GroupExpense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}

	var inserted []models.GroupExpense
	if err := s.client.From(tableGroupExpenses).Insert(ctx, []*models.GroupExpense{expense}, &inserted); err != nil {
		return fmt.Errorf("failed to create group expense: %w", err)
	}
	if len(inserted) == 1 {
		*expense = inserted[0]
	}
	return nil
}

// ListGroupExpenses retrieves a group's shared expenses, newest first.
func (s *RestStore) ListGroupExpenses(ctx context.Context, groupID string) ([]models.GroupExpense, error) {
	var expenses []models.GroupExpense
	err := s.client.From(tableGroupExpenses).
		Eq("group_id", groupID).
		Order("created_at", true).
		Get(ctx, &expenses)
	if err != nil {
		return nil, fmt.Errorf("failed to list group expenses: %w", err)
	}
	return expenses, nil
}

// DeleteGroupExpense removes a shared expense and its splits. Splits go
// first so a failure cannot orphan them.
func (s *RestStore) DeleteGroupExpense(ctx context.Context, groupID, expenseID string) error {
	if err := s.client.From(tableSplits).Eq("expense_id", expenseID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}
	err := s.client.From(tableGroupExpenses).
		Eq("id", expenseID).
		Eq("group_id", groupID).
		Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete group expense: %w", err)
	}
	return nil
}

// CreateSplits persists an expense's split rows in one batch insert, so
// either all of them land or none do.
func (s *RestStore) CreateSplits(ctx context.Context, splits []models.Split) error {
	if len(splits) == 0 {
		return nil
	}
	for i := range splits {
		if splits[i].ID == "" {
			splits[i].ID = uuid.New().String()
		}
	}
	if err := s.client.From(tableSplits).Insert(ctx, splits, nil); err != nil {
		return fmt.Errorf("failed to create splits: %w", err)
	}
	return nil
}

// ListSplits retrieves all splits belonging to the given expenses.
func (s *RestStore) ListSplits(ctx context.Context, expenseIDs []string) ([]models.Split, error) {
	if len(expenseIDs) == 0 {
		return nil, nil
	}
	var splits []models.Split
	if err := s.client.From(tableSplits).In("expense_id", expenseIDs).Get(ctx, &splits); err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	return splits, nil
}
