package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shritej1000/Spiltzee/internal/models"
	"github.com/Shritej1000/Spiltzee/internal/notify"
	"github.com/Shritej1000/Spiltzee/internal/storage"
)

// fakeStore is an in-memory storage.Store with failure injection for the
// partial-write paths and call counters for cache assertions.
type fakeStore struct {
	profiles      map[string]models.User
	expenses      []models.Expense
	groups        map[string]models.Group
	memberships   map[string][]models.GroupMember // group ID -> members
	groupExpenses []models.GroupExpense
	splits        []models.Split
	settlements   []models.Settlement

	failCreateSplits       error
	failDeleteGroupExpense error

	listGroupExpensesCalls int

	// onListSettlements, when set, runs at the start of ListSettlements;
	// tests use it to interleave a write with a balance load.
	onListSettlements func()
}

var _ storage.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:    make(map[string]models.User),
		groups:      make(map[string]models.Group),
		memberships: make(map[string][]models.GroupMember),
	}
}

func (f *fakeStore) UpsertProfile(ctx context.Context, user *models.User) error {
	f.profiles[user.ID] = *user
	return nil
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, ok := f.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s not found", userID)
	}
	return &user, nil
}

func (f *fakeStore) ListProfiles(ctx context.Context) ([]models.User, error) {
	var users []models.User
	for _, u := range f.profiles {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = fmt.Sprintf("exp-%d", len(f.expenses)+1)
	}
	expense.CreatedAt = time.Now()
	f.expenses = append(f.expenses, *expense)
	return nil
}

func (f *fakeStore) ListExpenses(ctx context.Context, userID string, filter storage.ExpenseFilter) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range f.expenses {
		if e.UserID != userID {
			continue
		}
		if !filter.From.IsZero() && e.SpentAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !e.SpentAt.Before(filter.To) {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		out = append(out, e)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeStore) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	for i, e := range f.expenses {
		if e.ID == expenseID && e.UserID == userID {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			return nil
		}
	}
	return errors.New("expense not found")
}

func (f *fakeStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = fmt.Sprintf("grp-%d", len(f.groups)+1)
	}
	group.CreatedAt = time.Now()
	f.groups[group.ID] = *group
	if group.CreatedBy != "" {
		return f.AddGroupMembers(ctx, group.ID, []string{group.CreatedBy})
	}
	return nil
}

func (f *fakeStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, ok := f.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s not found", groupID)
	}
	return &group, nil
}

func (f *fakeStore) ListGroupsForMember(ctx context.Context, userID string) ([]models.Group, error) {
	var out []models.Group
	for groupID, members := range f.memberships {
		for _, m := range members {
			if m.UserID == userID {
				out = append(out, f.groups[groupID])
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	for _, userID := range userIDs {
		exists := false
		for _, m := range f.memberships[groupID] {
			if m.UserID == userID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		member := models.GroupMember{GroupID: groupID, UserID: userID}
		if p, ok := f.profiles[userID]; ok {
			member.Name = p.Name
			member.Email = p.Email
			member.UPIAddress = p.UPIAddress
		}
		f.memberships[groupID] = append(f.memberships[groupID], member)
	}
	return nil
}

func (f *fakeStore) ListGroupMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	return f.memberships[groupID], nil
}

func (f *fakeStore) CreateGroupExpense(ctx context.Context, expense *models.GroupExpense) error {
	if expense.ID == "" {
		expense.ID = fmt.Sprintf("gexp-%d", len(f.groupExpenses)+1)
	}
	expense.CreatedAt = time.Now()
	f.groupExpenses = append(f.groupExpenses, *expense)
	return nil
}

func (f *fakeStore) ListGroupExpenses(ctx context.Context, groupID string) ([]models.GroupExpense, error) {
	f.listGroupExpensesCalls++
	var out []models.GroupExpense
	for _, e := range f.groupExpenses {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteGroupExpense(ctx context.Context, groupID, expenseID string) error {
	if f.failDeleteGroupExpense != nil {
		return f.failDeleteGroupExpense
	}
	for i, e := range f.groupExpenses {
		if e.ID == expenseID && e.GroupID == groupID {
			f.groupExpenses = append(f.groupExpenses[:i], f.groupExpenses[i+1:]...)
			return nil
		}
	}
	return errors.New("group expense not found")
}

func (f *fakeStore) CreateSplits(ctx context.Context, splits []models.Split) error {
	if f.failCreateSplits != nil {
		return f.failCreateSplits
	}
	for i := range splits {
		if splits[i].ID == "" {
			splits[i].ID = fmt.Sprintf("spl-%d", len(f.splits)+i+1)
		}
	}
	f.splits = append(f.splits, splits...)
	return nil
}

func (f *fakeStore) ListSplits(ctx context.Context, expenseIDs []string) ([]models.Split, error) {
	ids := make(map[string]bool, len(expenseIDs))
	for _, id := range expenseIDs {
		ids[id] = true
	}
	var out []models.Split
	for _, s := range f.splits {
		if ids[s.ExpenseID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = fmt.Sprintf("set-%d", len(f.settlements)+1)
	}
	settlement.CreatedAt = time.Now()
	f.settlements = append(f.settlements, *settlement)
	return nil
}

func (f *fakeStore) ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error) {
	if f.onListSettlements != nil {
		f.onListSettlements()
	}
	var out []models.Settlement
	for _, s := range f.settlements {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeNotifier records sent messages and can be made to fail.
type fakeNotifier struct {
	sent []notify.Message
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, msg notify.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}
