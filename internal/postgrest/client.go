// Package postgrest is a client for the hosted backend's row-level query API
// (PostgREST convention): filtered selects, single or batch inserts, and
// filtered partial updates against logical tables. It knows nothing about
// the application's tables; the storage layer binds it to the schema.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the bearer token attached to every request. The
// session manager implements it for user requests; batch jobs use a
// StaticToken with the service-role key.
type TokenSource interface {
	// AccessToken returns the current bearer token. The context bounds
	// any round trip the source needs, such as a token refresh.
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// AccessToken implements TokenSource.
func (t StaticToken) AccessToken(ctx context.Context) (string, error) { return string(t), nil }

// Client issues row-level queries against the hosted backend. All requests
// carry the project API key; the per-request bearer token comes from the
// TokenSource so row-level security sees the acting user.
type Client struct {
	baseURL    string
	apiKey     string
	tokens     TokenSource
	httpClient *http.Client
}

// New creates a Client for the project at baseURL (without the /rest/v1
// suffix). If tokens is nil the API key doubles as the bearer token, which
// the backend treats as the anonymous role.
func New(baseURL, apiKey string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// From starts a query against the given logical table.
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table}
}

func (c *Client) do(ctx context.Context, method, table, rawQuery string, body any, prefer []string, single bool, dest any) (http.Header, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + "/rest/v1/" + table
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	token := c.apiKey
	if c.tokens != nil {
		t, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get access token: %w", err)
		}
		if t != "" {
			token = t
		}
	}

	requestID := uuid.NewString()
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	if len(prefer) > 0 {
		req.Header.Set("Prefer", strings.Join(prefer, ","))
	}

	slog.Debug("Storage request",
		"method", method,
		"table", table,
		"query", rawQuery,
		"request_id", requestID,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp)
		slog.Debug("Storage request failed",
			"method", method,
			"table", table,
			"status", resp.StatusCode,
			"request_id", requestID,
			"error", apiErr,
		)
		return nil, apiErr
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.Header, nil
}

// parseContentRange extracts the total row count from a Content-Range header
// of the form "0-24/3573" (or "*/0" for an empty table).
func parseContentRange(header string) (int64, error) {
	idx := strings.LastIndex(header, "/")
	if idx < 0 || idx == len(header)-1 {
		return 0, fmt.Errorf("malformed Content-Range %q", header)
	}
	total := header[idx+1:]
	if total == "*" {
		return 0, fmt.Errorf("Content-Range %q carries no count", header)
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed Content-Range %q: %w", header, err)
	}
	return n, nil
}
