// Package calculator holds the pure split and balance math. It performs no
// I/O: callers load members, expenses, splits and settlements first and fold
// them here.
package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Shritej1000/Spiltzee/internal/models"
	"github.com/Shritej1000/Spiltzee/internal/money"
)

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	UserID    string
	Name      string
	Net       decimal.Decimal // Positive = owed money, Negative = owes money
	TotalPaid decimal.Decimal // Total amount fronted across expenses and settlements
	TotalOwed decimal.Decimal // Total amount charged via splits and received settlements
}

// Settled reports whether this member's net position is within the
// settlement tolerance of zero.
func (b MemberBalance) Settled() bool {
	return money.IsSettled(b.Net)
}

// SettlementSuggestion represents one suggested payment from a debtor to a
// creditor that moves the group toward all-zero balances.
type SettlementSuggestion struct {
	FromUserID string // Person who owes
	ToUserID   string // Person who is owed
	Amount     decimal.Decimal
}

// GroupBalances computes the signed net balance of every group member across
// the group's expenses, splits, and recorded settlements.
//
// Algorithm:
//   - every member starts at zero, so inactive members still appear
//   - for each expense: the payer fronted the full total (+amount)
//   - for each split: the split member owes their share (-amount)
//   - for each settlement: the payer's position improves, the receiver's
//     decreases
//   - net = total_paid - total_owed
//
// For any dataset whose splits reconcile with their expense totals, the
// returned balances sum to zero (within the money epsilon). Results are
// ordered by user ID so output is deterministic.
func GroupBalances(members []models.GroupMember, expenses []models.GroupExpense, splits []models.Split, settlements []models.Settlement) []MemberBalance {
	balances := make(map[string]*MemberBalance, len(members))

	ensure := func(userID string) *MemberBalance {
		if bal, ok := balances[userID]; ok {
			return bal
		}
		bal := &MemberBalance{UserID: userID}
		balances[userID] = bal
		return bal
	}

	for _, m := range members {
		bal := ensure(m.UserID)
		bal.Name = m.Name
	}

	for _, e := range expenses {
		// An expense without a payer cannot move balances.
		if e.PaidBy == "" {
			continue
		}
		payer := ensure(e.PaidBy)
		payer.TotalPaid = payer.TotalPaid.Add(e.Amount)
	}

	for _, s := range splits {
		bal := ensure(s.UserID)
		bal.TotalOwed = bal.TotalOwed.Add(s.Amount)
	}

	for _, s := range settlements {
		// Paying down debt counts like fronting money; receiving a
		// payment consumes credit.
		from := ensure(s.FromUserID)
		from.TotalPaid = from.TotalPaid.Add(s.Amount)
		to := ensure(s.ToUserID)
		to.TotalOwed = to.TotalOwed.Add(s.Amount)
	}

	result := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.Net = bal.TotalPaid.Sub(bal.TotalOwed)
		result = append(result, *bal)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result
}

// SuggestSettlements matches debtors with creditors to produce a small set of
// payments that would zero out the group.
//
// Greedy algorithm: walk debtors and creditors in descending order of
// magnitude, settling the minimum of what the current debtor owes and the
// current creditor is owed, then advancing whichever side is exhausted.
// Residues at or below the money epsilon are treated as noise and skipped.
func SuggestSettlements(balances []MemberBalance) []SettlementSuggestion {
	var debtors, creditors []MemberBalance
	for _, bal := range balances {
		if bal.Settled() {
			continue
		}
		if bal.Net.IsNegative() {
			debtors = append(debtors, bal)
		} else {
			creditors = append(creditors, bal)
		}
	}

	sort.Slice(debtors, func(i, j int) bool { return debtors[i].Net.LessThan(debtors[j].Net) })
	sort.Slice(creditors, func(i, j int) bool { return creditors[i].Net.GreaterThan(creditors[j].Net) })

	owes := make(map[string]decimal.Decimal, len(debtors))
	owed := make(map[string]decimal.Decimal, len(creditors))
	for _, d := range debtors {
		owes[d.UserID] = d.Net.Neg()
	}
	for _, c := range creditors {
		owed[c.UserID] = c.Net
	}

	var suggestions []SettlementSuggestion
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].UserID
		creditor := creditors[j].UserID

		amount := decimal.Min(owes[debtor], owed[creditor])
		if amount.GreaterThan(money.Epsilon) {
			suggestions = append(suggestions, SettlementSuggestion{
				FromUserID: debtor,
				ToUserID:   creditor,
				Amount:     amount,
			})
		}

		owes[debtor] = owes[debtor].Sub(amount)
		owed[creditor] = owed[creditor].Sub(amount)

		if owes[debtor].LessThanOrEqual(money.Epsilon) {
			i++
		}
		if owed[creditor].LessThanOrEqual(money.Epsilon) {
			j++
		}
	}

	return suggestions
}
