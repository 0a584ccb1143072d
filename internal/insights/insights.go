// Package insights derives simple rule-based observations about a month of
// personal spending. Rules are pure text generation over computed
// aggregates; there is no learning and no I/O.
package insights

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shritej1000/Spiltzee/internal/analytics"
	"github.com/Shritej1000/Spiltzee/internal/models"
	"github.com/Shritej1000/Spiltzee/internal/money"
)

// Insight is one observation about the month's spending.
type Insight struct {
	// Code identifies the rule that fired; stable for callers that
	// want to style or filter insights.
	Code    string
	Message string
}

// Rule codes.
const (
	CodeDominantCategory = "dominant_category"
	CodeSpendUp          = "spend_up"
	CodeSpendDown        = "spend_down"
	CodeLargeExpense     = "large_expense"
	CodeRunRate          = "run_rate"
)

// Rule thresholds.
var (
	dominantShare  = decimal.NewFromInt(40) // percent of month total
	deltaThreshold = decimal.NewFromInt(20) // percent month over month
	largeShare     = decimal.NewFromInt(30) // percent of month total in one expense
)

// Generate runs every rule over the current month and its predecessor.
// The expenses slice should cover the current month; entries outside it
// were already excluded when the overview was computed, and only the
// large-expense rule reads the raw entries.
func Generate(current, previous analytics.MonthOverview, expenses []models.Expense, now time.Time) []Insight {
	var insights []Insight

	if i, ok := dominantCategory(current); ok {
		insights = append(insights, i)
	}
	if i, ok := monthDelta(current, previous); ok {
		insights = append(insights, i)
	}
	if i, ok := largeExpense(current, expenses); ok {
		insights = append(insights, i)
	}
	if i, ok := runRate(current, now); ok {
		insights = append(insights, i)
	}
	return insights
}

// dominantCategory fires when one category takes more than dominantShare
// percent of the month.
func dominantCategory(current analytics.MonthOverview) (Insight, bool) {
	if len(current.ByCategory) < 2 {
		return Insight{}, false
	}
	top := current.ByCategory[0]
	if top.Share.LessThanOrEqual(dominantShare) {
		return Insight{}, false
	}
	return Insight{
		Code: CodeDominantCategory,
		Message: fmt.Sprintf("%s takes %s%% of this month's spending (%s of %s).",
			top.Category, top.Share, money.Format(top.Total), money.Format(current.Total)),
	}, true
}

// monthDelta fires when the month total moved more than deltaThreshold
// percent against the previous month.
func monthDelta(current, previous analytics.MonthOverview) (Insight, bool) {
	if !previous.Total.IsPositive() || !current.Total.IsPositive() {
		return Insight{}, false
	}
	hundred := decimal.NewFromInt(100)
	delta := current.Total.Sub(previous.Total).Mul(hundred).Div(previous.Total).Round(0)
	if delta.Abs().LessThanOrEqual(deltaThreshold) {
		return Insight{}, false
	}
	if delta.IsPositive() {
		return Insight{
			Code: CodeSpendUp,
			Message: fmt.Sprintf("Spending is up %s%% from last month (%s vs %s).",
				delta, money.Format(current.Total), money.Format(previous.Total)),
		}, true
	}
	return Insight{
		Code: CodeSpendDown,
		Message: fmt.Sprintf("Spending is down %s%% from last month (%s vs %s).",
			delta.Abs(), money.Format(current.Total), money.Format(previous.Total)),
	}, true
}

// largeExpense fires when a single expense exceeds largeShare percent of
// the month total.
func largeExpense(current analytics.MonthOverview, expenses []models.Expense) (Insight, bool) {
	if !current.Total.IsPositive() || current.Count < 2 {
		return Insight{}, false
	}
	threshold := current.Total.Mul(largeShare).Div(decimal.NewFromInt(100))
	var biggest *models.Expense
	for i := range expenses {
		e := &expenses[i]
		if e.SpentAt.UTC().Year() != current.Year || e.SpentAt.UTC().Month() != current.Month {
			continue
		}
		if biggest == nil || e.Amount.GreaterThan(biggest.Amount) {
			biggest = e
		}
	}
	if biggest == nil || biggest.Amount.LessThanOrEqual(threshold) {
		return Insight{}, false
	}
	label := biggest.Description
	if label == "" {
		label = biggest.Category
	}
	return Insight{
		Code: CodeLargeExpense,
		Message: fmt.Sprintf("One expense (%s, %s) makes up a large share of this month.",
			label, money.Format(biggest.Amount)),
	}, true
}

// runRate projects the month total from the daily average so far; it only
// fires mid-month, where the projection adds information.
func runRate(current analytics.MonthOverview, now time.Time) (Insight, bool) {
	start, end := analytics.MonthBounds(current.Year, current.Month)
	now = now.UTC()
	if now.Before(start) || !now.Before(end) {
		return Insight{}, false
	}
	avg := analytics.DailyAverage(current, now)
	if !avg.IsPositive() {
		return Insight{}, false
	}
	daysInMonth := int64(end.Sub(start).Hours() / 24)
	projected := avg.Mul(decimal.NewFromInt(daysInMonth))
	return Insight{
		Code: CodeRunRate,
		Message: fmt.Sprintf("At %s per day, this month is on track for about %s.",
			money.Format(avg), money.Format(projected)),
	}, true
}
