package rest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Shritej1000/Spiltzee/internal/models"
	"github.com/Shritej1000/Spiltzee/internal/storage"
)

// CreateExpense persists a new personal expense.
func (s *RestStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}

	var inserted []models.Expense
	if err := s.client.From(tableExpenses).Insert(ctx, []*models.Expense{expense}, &inserted); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	if len(inserted) == 1 {
		*expense = inserted[0]
	}
	return nil
}

// ListExpenses retrieves the user's personal expenses matching the filter,
// newest first.
func (s *RestStore) ListExpenses(ctx context.Context, userID string, f storage.ExpenseFilter) ([]models.Expense, error) {
	q := s.client.From(tableExpenses).Eq("user_id", userID)
	if !f.From.IsZero() {
		q = q.Gte("spent_at", f.From.UTC().Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		q = q.Lt("spent_at", f.To.UTC().Format(time.RFC3339))
	}
	if f.Category != "" {
		q = q.Eq("category", f.Category)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var expenses []models.Expense
	if err := q.Order("spent_at", true).Get(ctx, &expenses); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes one of the user's personal expenses.
func (s *RestStore) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	err := s.client.From(tableExpenses).
		Eq("id", expenseID).
		Eq("user_id", userID).
		Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}
