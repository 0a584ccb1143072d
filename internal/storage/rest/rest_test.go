package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shritej1000/Spiltzee/internal/models"
	"github.com/Shritej1000/Spiltzee/internal/postgrest"
	"github.com/Shritej1000/Spiltzee/internal/storage"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *RestStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := postgrest.New(server.URL, "anon-key", postgrest.StaticToken("token"), 5*time.Second)
	return New(client)
}

func TestListExpensesQueryShape(t *testing.T) {
	var gotPath, gotQuery string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte("[]"))
	})

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := store.ListExpenses(context.Background(), "u1", storage.ExpenseFilter{
		From:     from,
		To:       to,
		Category: "food",
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("ListExpenses returned error: %v", err)
	}

	if gotPath != "/rest/v1/expenses" {
		t.Errorf("path = %q, want /rest/v1/expenses", gotPath)
	}
	want := "category=eq.food&limit=10&order=spent_at.desc&spent_at=gte.2026-08-01T00%3A00%3A00Z&spent_at=lt.2026-09-01T00%3A00%3A00Z&user_id=eq.u1"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestCreateGroupExpenseAssignsIDAndDecodesRow(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var rows []models.GroupExpense
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			t.Fatalf("failed to decode insert body: %v", err)
		}
		if len(rows) != 1 || rows[0].ID == "" {
			t.Errorf("insert body = %+v, want one row with client-assigned id", rows)
		}
		rows[0].CreatedAt = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rows)
	})

	expense := &models.GroupExpense{
		GroupID:   "g1",
		PaidBy:    "u1",
		Amount:    decimal.RequireFromString("100.00"),
		SplitType: models.SplitEqual,
	}
	if err := store.CreateGroupExpense(context.Background(), expense); err != nil {
		t.Fatalf("CreateGroupExpense returned error: %v", err)
	}
	if expense.ID == "" {
		t.Error("expense ID not assigned")
	}
	if expense.CreatedAt.IsZero() {
		t.Error("CreatedAt not taken from the returned representation")
	}
}

func TestListSplitsUsesInFilter(t *testing.T) {
	var gotQuery string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte("[]"))
	})

	if _, err := store.ListSplits(context.Background(), []string{"e1", "e2"}); err != nil {
		t.Fatalf("ListSplits returned error: %v", err)
	}
	if gotQuery != "expense_id=in.%28%22e1%22%2C%22e2%22%29" {
		t.Errorf("query = %q, want expense_id=in.(\"e1\",\"e2\") encoded", gotQuery)
	}

	// No expense IDs means no request at all.
	gotQuery = "none"
	splits, err := store.ListSplits(context.Background(), nil)
	if err != nil || splits != nil {
		t.Errorf("ListSplits(nil) = %v, %v; want nil, nil", splits, err)
	}
	if gotQuery != "none" {
		t.Error("ListSplits(nil) should not issue a request")
	}
}

func TestListGroupMembersMergesProfiles(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/group_members":
			json.NewEncoder(w).Encode([]models.GroupMember{
				{GroupID: "g1", UserID: "u1"},
				{GroupID: "g1", UserID: "u2"},
			})
		case "/rest/v1/profiles":
			json.NewEncoder(w).Encode([]models.User{
				{ID: "u1", Name: "Asha", Email: "asha@example.com", UPIAddress: "asha@okbank"},
				{ID: "u2", Name: "Ravi", Email: "ravi@example.com"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	members, err := store.ListGroupMembers(context.Background(), "g1")
	if err != nil {
		t.Fatalf("ListGroupMembers returned error: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	if members[0].Name != "Asha" || members[0].UPIAddress != "asha@okbank" {
		t.Errorf("member[0] = %+v, want profile fields merged", members[0])
	}
	if members[1].Name != "Ravi" {
		t.Errorf("member[1] = %+v, want profile fields merged", members[1])
	}
}

func TestCreateGroupAddsCreatorMembership(t *testing.T) {
	var memberRows []map[string]string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/groups":
			var rows []models.Group
			json.NewDecoder(r.Body).Decode(&rows)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(rows)
		case "/rest/v1/group_members":
			json.NewDecoder(r.Body).Decode(&memberRows)
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	group := &models.Group{Name: "Trip", CreatedBy: "u1"}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	if len(memberRows) != 1 || memberRows[0]["user_id"] != "u1" {
		t.Errorf("membership rows = %+v, want creator membership", memberRows)
	}
	if memberRows[0]["group_id"] != group.ID {
		t.Errorf("membership group_id = %q, want %q", memberRows[0]["group_id"], group.ID)
	}
}
