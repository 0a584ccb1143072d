// Package service orchestrates user actions: it validates input, issues the
// storage requests sequentially, folds results through the calculator, and
// fires best-effort notifications. Every operation resolves to a value or an
// error; nothing is left in flight.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shritej1000/Spiltzee/internal/analytics"
	"github.com/Shritej1000/Spiltzee/internal/insights"
	"github.com/Shritej1000/Spiltzee/internal/models"
	"github.com/Shritej1000/Spiltzee/internal/notify"
	"github.com/Shritej1000/Spiltzee/internal/storage"
)

// Notifier sends event notifications. Failures are logged by the services
// and never propagated; see internal/notify for the production client.
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

// ExpenseService handles personal expenses: entry, listing, analytics, and
// insights.
type ExpenseService struct {
	store    storage.Store
	notifier Notifier
}

// NewExpenseService creates an ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, notifier Notifier) *ExpenseService {
	return &ExpenseService{store: store, notifier: notifier}
}

// AddExpense validates and persists a personal expense, then notifies the
// owner. ownerEmail may be empty, in which case no notification is sent.
func (s *ExpenseService) AddExpense(ctx context.Context, expense *models.Expense, ownerEmail string) error {
	if err := expense.Validate(); err != nil {
		return err
	}
	if expense.SpentAt.IsZero() {
		expense.SpentAt = time.Now().UTC()
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "user_id", expense.UserID, "error", err)
		return err
	}
	slog.Info("Expense added", "expense_id", expense.ID, "category", expense.Category)

	if ownerEmail != "" {
		msg := notify.ExpenseAdded(ownerEmail, "your expenses", expense.Category, expense.Amount)
		s.sendBestEffort(ctx, msg)
	}
	return nil
}

// ListExpenses retrieves the user's personal expenses matching the filter.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID string, f storage.ExpenseFilter) ([]models.Expense, error) {
	expenses, err := s.store.ListExpenses(ctx, userID, f)
	if err != nil {
		slog.Error("ListExpenses failed", "user_id", userID, "error", err)
		return nil, err
	}
	return expenses, nil
}

// DeleteExpense removes one of the user's personal expenses.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	if err := s.store.DeleteExpense(ctx, userID, expenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return err
	}
	slog.Info("Expense deleted", "expense_id", expenseID)
	return nil
}

// MonthOverview loads one month of the user's expenses and aggregates them.
func (s *ExpenseService) MonthOverview(ctx context.Context, userID string, year int, month time.Month) (analytics.MonthOverview, error) {
	from, to := analytics.MonthBounds(year, month)
	expenses, err := s.store.ListExpenses(ctx, userID, storage.ExpenseFilter{From: from, To: to})
	if err != nil {
		slog.Error("MonthOverview failed", "user_id", userID, "error", err)
		return analytics.MonthOverview{}, err
	}
	return analytics.Overview(year, month, expenses), nil
}

// Insights loads the month and its predecessor and runs the insight rules
// over them.
func (s *ExpenseService) Insights(ctx context.Context, userID string, year int, month time.Month) ([]insights.Insight, error) {
	curFrom, curTo := analytics.MonthBounds(year, month)
	prevFrom := curFrom.AddDate(0, -1, 0)

	expenses, err := s.store.ListExpenses(ctx, userID, storage.ExpenseFilter{From: prevFrom, To: curTo})
	if err != nil {
		slog.Error("Insights failed", "user_id", userID, "error", err)
		return nil, err
	}

	current := analytics.Overview(year, month, expenses)
	previous := analytics.Overview(prevFrom.Year(), prevFrom.Month(), expenses)
	return insights.Generate(current, previous, expenses, time.Now()), nil
}

// MonthlySeries loads the last `months` months of expenses and folds them
// into a per-month total series, oldest first.
func (s *ExpenseService) MonthlySeries(ctx context.Context, userID string, end time.Time, months int) ([]analytics.MonthTotal, error) {
	if months <= 0 {
		return nil, fmt.Errorf("months must be positive")
	}
	_, to := analytics.MonthBounds(end.UTC().Year(), end.UTC().Month())
	from := to.AddDate(0, -months, 0)

	expenses, err := s.store.ListExpenses(ctx, userID, storage.ExpenseFilter{From: from, To: to})
	if err != nil {
		slog.Error("MonthlySeries failed", "user_id", userID, "error", err)
		return nil, err
	}
	return analytics.MonthlySeries(end, months, expenses), nil
}

func (s *ExpenseService) sendBestEffort(ctx context.Context, msg notify.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		slog.Warn("Notification send failed", "type", msg.Type, "error", err)
	}
}
