// Package notify posts event notifications to the external notification
// collaborator. Delivery is best-effort: callers log failures and move on,
// never retry, and never surface them to the user.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Shritej1000/Spiltzee/internal/models"
	"github.com/Shritej1000/Spiltzee/internal/money"
)

// Message is the collaborator's request body.
type Message struct {
	To      string                  `json:"to"`
	Subject string                  `json:"subject"`
	Body    string                  `json:"message"`
	Type    models.NotificationType `json:"type"`
}

// GroupCreated builds the notification for a newly created group.
func GroupCreated(to, groupName string) Message {
	return Message{
		To:      to,
		Subject: "New group created",
		Body:    fmt.Sprintf("Your group %q is ready. Invite members and start splitting expenses.", groupName),
		Type:    models.NotifyGroupCreated,
	}
}

// ExpenseAdded builds the notification for a new shared expense.
func ExpenseAdded(to, groupName, description string, amount decimal.Decimal) Message {
	return Message{
		To:      to,
		Subject: "New expense in " + groupName,
		Body:    fmt.Sprintf("%s (%s) was added to %s.", description, money.Format(amount), groupName),
		Type:    models.NotifyExpenseAdded,
	}
}

// SettlementRecorded builds the notification for a recorded settlement.
func SettlementRecorded(to, payerName string, amount decimal.Decimal) Message {
	return Message{
		To:      to,
		Subject: "Settlement received",
		Body:    fmt.Sprintf("%s settled %s with you.", payerName, money.Format(amount)),
		Type:    models.NotifySettlement,
	}
}

// MonthlyReport builds the monthly spending report notification.
func MonthlyReport(to, summary string) Message {
	return Message{
		To:      to,
		Subject: "Your monthly spending report",
		Body:    summary,
		Type:    models.NotifyMonthlyReport,
	}
}

// Client posts messages to the notification endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a Client for the given endpoint.
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts one message. A non-2xx response is an error carrying the
// response text; the caller decides to log it, nothing more.
func (c *Client) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("notification endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
