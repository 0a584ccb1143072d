// Package analytics aggregates personal expenses into the numbers the
// dashboard and the monthly reporter present. Pure functions over
// already-loaded expense slices; no I/O.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shritej1000/Spiltzee/internal/models"
)

// CategoryAmount is one category's contribution to a month.
type CategoryAmount struct {
	Category string
	Total    decimal.Decimal
	// Share is this category's percentage of the month total, rounded to
	// two fractional digits.
	Share decimal.Decimal
}

// MonthOverview is a compact summary of one calendar month.
type MonthOverview struct {
	Year       int
	Month      time.Month
	Total      decimal.Decimal
	Count      int
	ByCategory []CategoryAmount
}

// MonthTotal is one point of a monthly spending series.
type MonthTotal struct {
	Year  int
	Month time.Month
	Total decimal.Decimal
}

// MonthBounds returns the half-open [start, end) range of the given month
// in UTC, matching the storage filter convention.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Overview folds expenses into one month's summary. Expenses outside the
// month are ignored, so callers can pass a wider window unfiltered.
// Categories are ordered by total, largest first.
func Overview(year int, month time.Month, expenses []models.Expense) MonthOverview {
	overview := MonthOverview{Year: year, Month: month, Total: decimal.Zero}
	byCategory := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		if e.SpentAt.UTC().Year() != year || e.SpentAt.UTC().Month() != month {
			continue
		}
		overview.Total = overview.Total.Add(e.Amount)
		overview.Count++
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
	}

	hundred := decimal.NewFromInt(100)
	for category, total := range byCategory {
		share := decimal.Zero
		if overview.Total.IsPositive() {
			share = total.Mul(hundred).Div(overview.Total).Round(2)
		}
		overview.ByCategory = append(overview.ByCategory, CategoryAmount{
			Category: category,
			Total:    total,
			Share:    share,
		})
	}
	sort.Slice(overview.ByCategory, func(i, j int) bool {
		a, b := overview.ByCategory[i], overview.ByCategory[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.Category < b.Category
	})
	return overview
}

// MonthlySeries folds expenses into per-month totals for the `months`
// calendar months ending at `end`'s month, oldest first. Months with no
// spending appear with a zero total.
func MonthlySeries(end time.Time, months int, expenses []models.Expense) []MonthTotal {
	if months <= 0 {
		return nil
	}

	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		spent := e.SpentAt.UTC()
		totals[monthKey(spent.Year(), spent.Month())] = totals[monthKey(spent.Year(), spent.Month())].Add(e.Amount)
	}

	series := make([]MonthTotal, 0, months)
	cursor := time.Date(end.UTC().Year(), end.UTC().Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := 0; i < months; i++ {
		series = append(series, MonthTotal{
			Year:  cursor.Year(),
			Month: cursor.Month(),
			Total: totals[monthKey(cursor.Year(), cursor.Month())],
		})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return series
}

// DailyAverage is the month's total divided across the days elapsed so far
// (or the whole month when it is already over), rounded to paise.
func DailyAverage(overview MonthOverview, now time.Time) decimal.Decimal {
	start, end := MonthBounds(overview.Year, overview.Month)
	days := daysBetween(start, minTime(now.UTC(), end))
	if days <= 0 {
		return decimal.Zero
	}
	return overview.Total.Div(decimal.NewFromInt(int64(days))).Round(2)
}

func monthKey(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func daysBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	// Partial days count as elapsed.
	days := int(end.Sub(start).Hours() / 24)
	if end.Sub(start)%(24*time.Hour) != 0 {
		days++
	}
	return days
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
