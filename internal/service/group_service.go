package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/Shritej1000/Spiltzee/internal/cache"
	"github.com/Shritej1000/Spiltzee/internal/calculator"
	"github.com/Shritej1000/Spiltzee/internal/models"
	"github.com/Shritej1000/Spiltzee/internal/notify"
	"github.com/Shritej1000/Spiltzee/internal/storage"
	"github.com/Shritej1000/Spiltzee/internal/upi"
)

// GroupService handles groups, shared expenses with splits, balances, and
// settlements.
type GroupService struct {
	store    storage.Store
	notifier Notifier

	// balances caches the balance projection per group ID; every write
	// to a group invalidates its entry, and the singleflight group
	// collapses concurrent recomputations for the same group. The
	// generation counter detects a write racing a load, so the load's
	// result is not cached over the invalidation.
	balances *cache.LRU[[]calculator.MemberBalance]
	flight   singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64
}

// NewGroupService creates a GroupService with the given storage backend and
// balance cache.
func NewGroupService(store storage.Store, notifier Notifier, balances *cache.LRU[[]calculator.MemberBalance]) *GroupService {
	return &GroupService{
		store:    store,
		notifier: notifier,
		balances: balances,
		gens:     make(map[string]uint64),
	}
}

// CreateGroup creates a group owned by the creator, adds the initial
// members, and notifies the creator.
func (s *GroupService) CreateGroup(ctx context.Context, name string, creator models.User, memberIDs []string) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}

	group := &models.Group{Name: name, CreatedBy: creator.ID}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "name", name, "error", err)
		return nil, err
	}
	if err := s.store.AddGroupMembers(ctx, group.ID, memberIDs); err != nil {
		slog.Error("CreateGroup failed adding members", "group_id", group.ID, "error", err)
		return nil, err
	}
	slog.Info("Group created", "group_id", group.ID, "name", name, "members_count", len(memberIDs)+1)

	if creator.Email != "" {
		s.sendBestEffort(ctx, notify.GroupCreated(creator.Email, name))
	}
	return group, nil
}

// Groups retrieves every group the user belongs to.
func (s *GroupService) Groups(ctx context.Context, userID string) ([]models.Group, error) {
	groups, err := s.store.ListGroupsForMember(ctx, userID)
	if err != nil {
		slog.Error("Groups failed", "user_id", userID, "error", err)
		return nil, err
	}
	return groups, nil
}

// AddMembers adds users to a group.
func (s *GroupService) AddMembers(ctx context.Context, groupID string, userIDs []string) error {
	if err := s.store.AddGroupMembers(ctx, groupID, userIDs); err != nil {
		slog.Error("AddMembers failed", "group_id", groupID, "error", err)
		return err
	}
	s.invalidate(groupID)
	slog.Info("Members added", "group_id", groupID, "count", len(userIDs))
	return nil
}

// Members retrieves a group's members with profile fields populated.
func (s *GroupService) Members(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	members, err := s.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		slog.Error("Members failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return members, nil
}

// Expenses retrieves a group's shared expenses.
func (s *GroupService) Expenses(ctx context.Context, groupID string) ([]models.GroupExpense, error) {
	expenses, err := s.store.ListGroupExpenses(ctx, groupID)
	if err != nil {
		slog.Error("Expenses failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return expenses, nil
}

// AddGroupExpenseInput describes a new shared expense. Exactly one of the
// split-detail fields is read, chosen by SplitType: Members for equal,
// Amounts for unequal, Percents for percentage, Shares for shares.
type AddGroupExpenseInput struct {
	GroupID     string
	PaidBy      string
	Description string
	Amount      decimal.Decimal
	SplitType   models.SplitType

	Members  []string
	Amounts  map[string]decimal.Decimal
	Percents map[string]decimal.Decimal
	Shares   map[string]int64
}

// AddGroupExpense validates a proposed shared expense, derives its splits,
// and writes expense and splits as one logical unit.
//
// The write is two storage steps: the expense row first, then the splits
// batch. When the second step fails the service deletes the just-created
// expense so no orphan stays behind; both outcomes surface as a
// *PartialWriteError so callers can tell the user exactly what happened.
func (s *GroupService) AddGroupExpense(ctx context.Context, in AddGroupExpenseInput) (*models.GroupExpense, error) {
	expense := &models.GroupExpense{
		GroupID:     in.GroupID,
		PaidBy:      in.PaidBy,
		Description: in.Description,
		Amount:      in.Amount,
		SplitType:   in.SplitType,
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		slog.Error("AddGroupExpense failed - group not found", "group_id", in.GroupID, "error", err)
		return nil, err
	}

	members, err := s.store.ListGroupMembers(ctx, in.GroupID)
	if err != nil {
		slog.Error("AddGroupExpense failed loading members", "group_id", in.GroupID, "error", err)
		return nil, err
	}
	memberSet := make(map[string]models.GroupMember, len(members))
	for _, m := range members {
		memberSet[m.UserID] = m
	}
	if _, ok := memberSet[in.PaidBy]; !ok {
		return nil, fmt.Errorf("payer %s: %w", in.PaidBy, ErrNotAMember)
	}

	shares, err := s.buildShares(in)
	if err != nil {
		return nil, err
	}
	for userID := range shares {
		if _, ok := memberSet[userID]; !ok {
			return nil, fmt.Errorf("split member %s: %w", userID, ErrNotAMember)
		}
	}

	// Step 1: the expense row.
	if err := s.store.CreateGroupExpense(ctx, expense); err != nil {
		slog.Error("AddGroupExpense failed", "group_id", in.GroupID, "error", err)
		return nil, err
	}

	// Step 2: the splits batch. On failure, compensate by deleting the
	// expense written in step 1.
	splits := make([]models.Split, 0, len(shares))
	for _, userID := range sortedKeys(shares) {
		splits = append(splits, models.Split{
			ExpenseID: expense.ID,
			UserID:    userID,
			Amount:    shares[userID],
		})
	}
	if err := s.store.CreateSplits(ctx, splits); err != nil {
		pwErr := &PartialWriteError{ExpenseID: expense.ID, Err: err}
		if delErr := s.store.DeleteGroupExpense(ctx, in.GroupID, expense.ID); delErr != nil {
			slog.Error("AddGroupExpense left an orphaned expense",
				"expense_id", expense.ID,
				"split_error", err,
				"rollback_error", delErr,
			)
		} else {
			pwErr.Compensated = true
			slog.Warn("AddGroupExpense rolled back", "expense_id", expense.ID, "error", err)
		}
		return nil, pwErr
	}

	s.invalidate(in.GroupID)
	slog.Info("Group expense added",
		"expense_id", expense.ID,
		"group_id", in.GroupID,
		"splits_count", len(splits),
	)

	for _, m := range members {
		if m.UserID == in.PaidBy || m.Email == "" {
			continue
		}
		s.sendBestEffort(ctx, notify.ExpenseAdded(m.Email, group.Name, in.Description, in.Amount))
	}
	return expense, nil
}

// buildShares derives the per-member owed amounts for the input's split type.
func (s *GroupService) buildShares(in AddGroupExpenseInput) (map[string]decimal.Decimal, error) {
	switch in.SplitType {
	case models.SplitEqual:
		return calculator.EqualSplit(in.Amount, in.Members, in.PaidBy)
	case models.SplitUnequal:
		return calculator.ExactSplit(in.Amount, in.Amounts)
	case models.SplitPercentage:
		return calculator.PercentageSplit(in.Amount, in.Percents, in.PaidBy)
	case models.SplitShares:
		return calculator.SharesSplit(in.Amount, in.Shares, in.PaidBy)
	}
	return nil, fmt.Errorf("unknown split type %q", in.SplitType)
}

// Balances computes the group's member balances, loading members, expenses,
// splits and settlements sequentially and folding them through the
// calculator. Results are cached per group until the next write; concurrent
// calls for one group share a single load.
func (s *GroupService) Balances(ctx context.Context, groupID string) ([]calculator.MemberBalance, error) {
	if cached, ok := s.balances.Get(groupID); ok {
		return cached, nil
	}

	result, err, _ := s.flight.Do(groupID, func() (any, error) {
		gen := s.generation(groupID)
		members, err := s.store.ListGroupMembers(ctx, groupID)
		if err != nil {
			return nil, err
		}
		expenses, err := s.store.ListGroupExpenses(ctx, groupID)
		if err != nil {
			return nil, err
		}
		expenseIDs := make([]string, len(expenses))
		for i, e := range expenses {
			expenseIDs[i] = e.ID
		}
		splits, err := s.store.ListSplits(ctx, expenseIDs)
		if err != nil {
			return nil, err
		}
		settlements, err := s.store.ListSettlements(ctx, groupID)
		if err != nil {
			return nil, err
		}

		balances := calculator.GroupBalances(members, expenses, splits, settlements)
		// A write that landed during the load already bumped the
		// generation; caching then would reinstate the stale projection.
		if s.generation(groupID) == gen {
			s.balances.Set(groupID, balances)
		}
		return balances, nil
	})
	if err != nil {
		slog.Error("Balances failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return result.([]calculator.MemberBalance), nil
}

// SettlementPlan is the outcome of SettleUp: who to pay, how much, and the
// deep link that opens the payment app pre-filled. Navigating to the link
// and recording the settlement afterwards are the caller's explicit steps.
type SettlementPlan struct {
	FromUserID string
	ToUserID   string
	ToName     string
	Amount     decimal.Decimal
	Link       string
}

// SettleUp plans a settlement for the debtor's outstanding balance: the
// creditor is chosen by the calculator's settlement suggestions, and the
// payment link is built from the creditor's UPI address.
func (s *GroupService) SettleUp(ctx context.Context, groupID, debtorID, note string) (*SettlementPlan, error) {
	balances, err := s.Balances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var suggestion *calculator.SettlementSuggestion
	for _, sg := range calculator.SuggestSettlements(balances) {
		if sg.FromUserID == debtorID {
			suggestion = &sg
			break
		}
	}
	if suggestion == nil {
		return nil, ErrNothingToSettle
	}

	members, err := s.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		slog.Error("SettleUp failed loading members", "group_id", groupID, "error", err)
		return nil, err
	}
	var creditor *models.GroupMember
	for i := range members {
		if members[i].UserID == suggestion.ToUserID {
			creditor = &members[i]
			break
		}
	}
	if creditor == nil {
		return nil, fmt.Errorf("creditor %s: %w", suggestion.ToUserID, ErrNotAMember)
	}
	if creditor.UPIAddress == "" {
		return nil, fmt.Errorf("member %s has no UPI address to pay to", creditor.Name)
	}

	link := upi.PaymentRequest{
		PayeeAddress: creditor.UPIAddress,
		PayeeName:    creditor.Name,
		Amount:       suggestion.Amount,
		Note:         note,
	}.Link()

	slog.Info("Settlement planned",
		"group_id", groupID,
		"from", debtorID,
		"to", suggestion.ToUserID,
	)
	return &SettlementPlan{
		FromUserID: debtorID,
		ToUserID:   suggestion.ToUserID,
		ToName:     creditor.Name,
		Amount:     suggestion.Amount,
		Link:       link,
	}, nil
}

// RecordSettlement records a completed out-of-band payment and notifies the
// receiving member.
func (s *GroupService) RecordSettlement(ctx context.Context, settlement *models.Settlement, payerName string) error {
	if !settlement.Amount.IsPositive() {
		return models.ErrNonPositiveTotal
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "group_id", settlement.GroupID, "error", err)
		return err
	}
	s.invalidate(settlement.GroupID)
	slog.Info("Settlement recorded",
		"settlement_id", settlement.ID,
		"group_id", settlement.GroupID,
	)

	members, err := s.store.ListGroupMembers(ctx, settlement.GroupID)
	if err == nil {
		for _, m := range members {
			if m.UserID == settlement.ToUserID && m.Email != "" {
				s.sendBestEffort(ctx, notify.SettlementRecorded(m.Email, payerName, settlement.Amount))
				break
			}
		}
	}
	return nil
}

func (s *GroupService) invalidate(groupID string) {
	s.mu.Lock()
	s.gens[groupID]++
	s.mu.Unlock()
	s.balances.Delete(groupID)
}

func (s *GroupService) generation(groupID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[groupID]
}

func (s *GroupService) sendBestEffort(ctx context.Context, msg notify.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		slog.Warn("Notification send failed", "type", msg.Type, "error", err)
	}
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
