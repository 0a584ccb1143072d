package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateSplits(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		shares   map[string]string
		wantErr  bool
		wantSum  string // expected Sum carried by the ReconciliationError
	}{
		{
			name:   "exact reconciliation",
			total:  "100.00",
			shares: map[string]string{"a": "50.00", "b": "50.00"},
		},
		{
			name:   "off by one paisa accepted",
			total:  "100.00",
			shares: map[string]string{"a": "50.00", "b": "49.99"},
		},
		{
			name:    "off by two paise rejected",
			total:   "100.00",
			shares:  map[string]string{"a": "50.00", "b": "49.98"},
			wantErr: true,
			wantSum: "99.98",
		},
		{
			name:    "over total rejected",
			total:   "100.00",
			shares:  map[string]string{"a": "60.00", "b": "50.00"},
			wantErr: true,
			wantSum: "110.00",
		},
		{
			name:    "empty split set rejected",
			total:   "100.00",
			shares:  map[string]string{},
			wantErr: true,
		},
		{
			name:    "negative share rejected",
			total:   "100.00",
			shares:  map[string]string{"a": "150.00", "b": "-50.00"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := make(map[string]decimal.Decimal, len(tt.shares))
			for id, s := range tt.shares {
				shares[id] = d(s)
			}

			err := ValidateSplits(d(tt.total), shares)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ValidateSplits returned error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateSplits returned nil, want error")
			}
			if tt.wantSum != "" {
				var recErr *ReconciliationError
				if !errors.As(err, &recErr) {
					t.Fatalf("error %v is not a ReconciliationError", err)
				}
				if !recErr.Sum.Equal(d(tt.wantSum)) {
					t.Errorf("error sum = %s, want %s", recErr.Sum, tt.wantSum)
				}
				if !recErr.Total.Equal(d(tt.total)) {
					t.Errorf("error total = %s, want %s", recErr.Total, tt.total)
				}
			}
		})
	}
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		members []string
		payer   string
		want    map[string]string
		wantErr bool
	}{
		{
			name:    "even division",
			total:   "100.00",
			members: []string{"a", "b"},
			payer:   "a",
			want:    map[string]string{"a": "50", "b": "50"},
		},
		{
			name:    "remainder goes to payer",
			total:   "100.00",
			members: []string{"a", "b", "c"},
			payer:   "a",
			want:    map[string]string{"a": "33.34", "b": "33.33", "c": "33.33"},
		},
		{
			name:    "payer outside split set, remainder to first member",
			total:   "100.00",
			members: []string{"b", "c", "d"},
			payer:   "a",
			want:    map[string]string{"b": "33.34", "c": "33.33", "d": "33.33"},
		},
		{
			name:    "single member takes everything",
			total:   "42.37",
			members: []string{"a"},
			payer:   "a",
			want:    map[string]string{"a": "42.37"},
		},
		{
			name:    "no members",
			total:   "100.00",
			members: nil,
			payer:   "a",
			wantErr: true,
		},
		{
			name:    "duplicate member",
			total:   "100.00",
			members: []string{"a", "a"},
			payer:   "a",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := EqualSplit(d(tt.total), tt.members, tt.payer)
			if tt.wantErr {
				if err == nil {
					t.Fatal("EqualSplit returned nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("EqualSplit returned error: %v", err)
			}
			assertShares(t, shares, tt.want, tt.total)
		})
	}
}

func TestPercentageSplit(t *testing.T) {
	shares, err := PercentageSplit(d("200.00"), map[string]decimal.Decimal{
		"a": d("50"),
		"b": d("30"),
		"c": d("20"),
	}, "a")
	if err != nil {
		t.Fatalf("PercentageSplit returned error: %v", err)
	}
	assertShares(t, shares, map[string]string{"a": "100", "b": "60", "c": "40"}, "200.00")

	// Uneven percentages still reconcile exactly, remainder to payer.
	shares, err = PercentageSplit(d("100.00"), map[string]decimal.Decimal{
		"a": d("33.33"),
		"b": d("33.33"),
		"c": d("33.34"),
	}, "b")
	if err != nil {
		t.Fatalf("PercentageSplit returned error: %v", err)
	}
	if err := ValidateSplits(d("100.00"), shares); err != nil {
		t.Errorf("percentage shares do not reconcile: %v", err)
	}

	if _, err := PercentageSplit(d("100.00"), map[string]decimal.Decimal{"a": d("90")}, "a"); err == nil {
		t.Error("percentages summing to 90 should be rejected")
	}
}

func TestSharesSplit(t *testing.T) {
	shares, err := SharesSplit(d("90.00"), map[string]int64{"couple": 2, "single": 1}, "single")
	if err != nil {
		t.Fatalf("SharesSplit returned error: %v", err)
	}
	assertShares(t, shares, map[string]string{"couple": "60", "single": "30"}, "90.00")

	// 100 over 3 shares leaves a remainder for the payer.
	shares, err = SharesSplit(d("100.00"), map[string]int64{"a": 1, "b": 1, "c": 1}, "c")
	if err != nil {
		t.Fatalf("SharesSplit returned error: %v", err)
	}
	if !shares["c"].Equal(d("33.34")) {
		t.Errorf("payer share = %s, want 33.34", shares["c"])
	}

	if _, err := SharesSplit(d("90.00"), map[string]int64{"a": 0}, "a"); err == nil {
		t.Error("zero share count should be rejected")
	}
}

func TestExactSplit(t *testing.T) {
	shares, err := ExactSplit(d("75.00"), map[string]decimal.Decimal{"a": d("50.00"), "b": d("25.00")})
	if err != nil {
		t.Fatalf("ExactSplit returned error: %v", err)
	}
	if len(shares) != 2 {
		t.Fatalf("got %d shares, want 2", len(shares))
	}

	_, err = ExactSplit(d("75.00"), map[string]decimal.Decimal{"a": d("50.00"), "b": d("20.00")})
	var recErr *ReconciliationError
	if !errors.As(err, &recErr) {
		t.Fatalf("ExactSplit error = %v, want ReconciliationError", err)
	}
}

// assertShares verifies every expected share and that the set reconciles
// with the total.
func assertShares(t *testing.T, got map[string]decimal.Decimal, want map[string]string, total string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d shares, want %d", len(got), len(want))
	}
	for id, amount := range want {
		if !got[id].Equal(d(amount)) {
			t.Errorf("share[%s] = %s, want %s", id, got[id], amount)
		}
	}
	sum := decimal.Zero
	for _, amount := range got {
		sum = sum.Add(amount)
	}
	if !sum.Equal(d(total)) {
		t.Errorf("shares sum to %s, want exactly %s", sum, total)
	}
}
