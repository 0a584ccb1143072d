package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Shritej1000/Spiltzee/internal/money"
)

// ReconciliationError reports a split set whose amounts do not sum to the
// expense total. It carries both figures so callers can display the
// discrepancy.
type ReconciliationError struct {
	Sum   decimal.Decimal
	Total decimal.Decimal
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("splits sum to %s but expense total is %s (difference %s)",
		money.Format(e.Sum), money.Format(e.Total), money.Format(e.Sum.Sub(e.Total).Abs()))
}

// ValidateSplits checks that the proposed per-member amounts reconcile with
// the expense total within the money epsilon (0.01 inclusive: a 0.01
// difference is accepted, 0.02 is rejected). Individual shares must be
// non-negative. Returns a *ReconciliationError on sum mismatch.
func ValidateSplits(total decimal.Decimal, shares map[string]decimal.Decimal) error {
	if len(shares) == 0 {
		return fmt.Errorf("must have at least one split member")
	}
	sum := decimal.Zero
	for userID, amount := range shares {
		if amount.IsNegative() {
			return fmt.Errorf("split for %s is negative", userID)
		}
		sum = sum.Add(amount)
	}
	if !money.WithinEpsilon(sum, total) {
		return &ReconciliationError{Sum: sum, Total: total}
	}
	return nil
}

// EqualSplit divides total evenly across memberIDs at paise precision.
//
// Division truncates each share to two fractional digits; the sub-paise
// remainder goes to the payer so the shares always sum exactly to the total
// (e.g. 100/3 with payer A yields A=33.34, B=33.33, C=33.33). If the payer
// is not in the split set, the remainder goes to the first member by ID.
func EqualSplit(total decimal.Decimal, memberIDs []string, payerID string) (map[string]decimal.Decimal, error) {
	if len(memberIDs) == 0 {
		return nil, fmt.Errorf("must have at least one split member")
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("total must be positive")
	}

	n := decimal.NewFromInt(int64(len(memberIDs)))
	base := total.Div(n).Truncate(2)

	shares := make(map[string]decimal.Decimal, len(memberIDs))
	for _, id := range memberIDs {
		if _, dup := shares[id]; dup {
			return nil, fmt.Errorf("duplicate split member %s", id)
		}
		shares[id] = base
	}

	remainder := total.Sub(base.Mul(n))
	addRemainder(shares, remainder, payerID)
	return shares, nil
}

// PercentageSplit divides total by per-member percentages, which must sum to
// 100 within the money epsilon. Shares truncate to paise; the remainder goes
// to the payer (same policy as EqualSplit).
func PercentageSplit(total decimal.Decimal, percents map[string]decimal.Decimal, payerID string) (map[string]decimal.Decimal, error) {
	if len(percents) == 0 {
		return nil, fmt.Errorf("must have at least one split member")
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("total must be positive")
	}

	hundred := decimal.NewFromInt(100)
	pctSum := decimal.Zero
	for userID, pct := range percents {
		if pct.IsNegative() {
			return nil, fmt.Errorf("percentage for %s is negative", userID)
		}
		pctSum = pctSum.Add(pct)
	}
	if !money.WithinEpsilon(pctSum, hundred) {
		return nil, fmt.Errorf("percentages sum to %s, want 100", pctSum)
	}

	shares := make(map[string]decimal.Decimal, len(percents))
	assigned := decimal.Zero
	for userID, pct := range percents {
		share := total.Mul(pct).Div(hundred).Truncate(2)
		shares[userID] = share
		assigned = assigned.Add(share)
	}

	addRemainder(shares, total.Sub(assigned), payerID)
	return shares, nil
}

// SharesSplit divides total proportionally to per-member share counts (e.g.
// a couple taking 2 shares against a single person's 1). Truncation and
// remainder policy match EqualSplit.
func SharesSplit(total decimal.Decimal, counts map[string]int64, payerID string) (map[string]decimal.Decimal, error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("must have at least one split member")
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("total must be positive")
	}

	var totalShares int64
	for userID, c := range counts {
		if c <= 0 {
			return nil, fmt.Errorf("share count for %s must be positive", userID)
		}
		totalShares += c
	}

	denom := decimal.NewFromInt(totalShares)
	shares := make(map[string]decimal.Decimal, len(counts))
	assigned := decimal.Zero
	for userID, c := range counts {
		share := total.Mul(decimal.NewFromInt(c)).Div(denom).Truncate(2)
		shares[userID] = share
		assigned = assigned.Add(share)
	}

	addRemainder(shares, total.Sub(assigned), payerID)
	return shares, nil
}

// ExactSplit copies explicit per-member amounts for the unequal split type
// and validates they reconcile with the total.
func ExactSplit(total decimal.Decimal, amounts map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	if err := ValidateSplits(total, amounts); err != nil {
		return nil, err
	}
	shares := make(map[string]decimal.Decimal, len(amounts))
	for userID, amount := range amounts {
		shares[userID] = amount
	}
	return shares, nil
}

// addRemainder assigns the truncation remainder to the payer if present,
// otherwise to the first member by ID, keeping the result deterministic.
func addRemainder(shares map[string]decimal.Decimal, remainder decimal.Decimal, payerID string) {
	if remainder.IsZero() {
		return
	}
	target := payerID
	if _, ok := shares[target]; !ok {
		ids := make([]string, 0, len(shares))
		for id := range shares {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		target = ids[0]
	}
	shares[target] = shares[target].Add(remainder)
}
