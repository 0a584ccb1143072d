package upi

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLink(t *testing.T) {
	req := PaymentRequest{
		PayeeAddress: "alice@okbank",
		PayeeName:    "Alice",
		Amount:       decimal.RequireFromString("50"),
		Note:         "Goa Trip settle up",
	}

	got := req.Link()
	want := "upi://pay?am=50.00&cu=INR&pa=alice%40okbank&pn=Alice&tn=Goa+Trip+settle+up"
	if got != want {
		t.Errorf("Link() = %q, want %q", got, want)
	}
}

func TestLinkDeterministic(t *testing.T) {
	req := PaymentRequest{
		PayeeAddress: "bob@upi",
		PayeeName:    "Bob B",
		Amount:       decimal.RequireFromString("123.456"),
		Note:         "dinner",
	}

	first := req.Link()
	for i := 0; i < 10; i++ {
		if got := req.Link(); got != first {
			t.Fatalf("Link() not stable: %q vs %q", got, first)
		}
	}
}

func TestLinkAmountAlwaysTwoDecimals(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"50", "am=50.00"},
		{"50.5", "am=50.50"},
		{"33.333", "am=33.33"},
	}

	for _, tt := range tests {
		req := PaymentRequest{PayeeAddress: "x@y", PayeeName: "X", Amount: decimal.RequireFromString(tt.amount)}
		if link := req.Link(); !strings.Contains(link, tt.want) {
			t.Errorf("Link() for amount %s = %q, want it to contain %q", tt.amount, link, tt.want)
		}
	}
}

func TestLinkOmitsEmptyNote(t *testing.T) {
	req := PaymentRequest{PayeeAddress: "x@y", PayeeName: "X", Amount: decimal.RequireFromString("10")}
	if strings.Contains(req.Link(), "tn=") {
		t.Errorf("Link() = %q, want no tn parameter for empty note", req.Link())
	}
}

func TestLinkRoundTripsParams(t *testing.T) {
	req := PaymentRequest{
		PayeeAddress: "carol@bank",
		PayeeName:    "Carol & Co",
		Amount:       decimal.RequireFromString("99.99"),
		Note:         "rent: march",
	}

	u, err := url.Parse(req.Link())
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	if u.Scheme != "upi" || u.Host != "pay" {
		t.Errorf("scheme/host = %s/%s, want upi/pay", u.Scheme, u.Host)
	}
	q := u.Query()
	if q.Get("pa") != "carol@bank" || q.Get("pn") != "Carol & Co" || q.Get("tn") != "rent: march" {
		t.Errorf("query params did not round-trip: %v", q)
	}
	if q.Get("am") != "99.99" || q.Get("cu") != "INR" {
		t.Errorf("amount/currency = %s/%s, want 99.99/INR", q.Get("am"), q.Get("cu"))
	}
}
