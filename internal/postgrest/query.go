package postgrest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Query builds one request against a logical table. Filter methods return
// the receiver so calls chain; the terminal verb (Get, Count, Insert,
// Update, Delete) executes the request.
type Query struct {
	client  *Client
	table   string
	columns string
	filters []filter
	order   []string
	limit   int
	single  bool
}

type filter struct {
	column string
	op     string
	value  string
}

// Select restricts the returned columns. Embedded-resource selects
// ("*,profile:profiles(name)") pass through untouched.
func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

// Eq filters rows where column equals value.
func (q *Query) Eq(column, value string) *Query {
	return q.addFilter(column, "eq", value)
}

// Neq filters rows where column does not equal value.
func (q *Query) Neq(column, value string) *Query {
	return q.addFilter(column, "neq", value)
}

// Gt filters rows where column is greater than value.
func (q *Query) Gt(column, value string) *Query {
	return q.addFilter(column, "gt", value)
}

// Gte filters rows where column is greater than or equal to value.
func (q *Query) Gte(column, value string) *Query {
	return q.addFilter(column, "gte", value)
}

// Lt filters rows where column is less than value.
func (q *Query) Lt(column, value string) *Query {
	return q.addFilter(column, "lt", value)
}

// Lte filters rows where column is less than or equal to value.
func (q *Query) Lte(column, value string) *Query {
	return q.addFilter(column, "lte", value)
}

// In filters rows where column is one of values. Each value is quoted so a
// comma or parenthesis inside it cannot break the filter list.
func (q *Query) In(column string, values []string) *Query {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteListValue(v)
	}
	return q.addFilter(column, "in", "("+strings.Join(quoted, ",")+")")
}

// quoteListValue double-quotes v per the backend's list-value convention,
// escaping backslashes and embedded quotes.
func quoteListValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

// Order sorts results by column, descending when desc is true. Repeated
// calls append secondary sort keys.
func (q *Query) Order(column string, desc bool) *Query {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	q.order = append(q.order, column+"."+dir)
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Single requests exactly one row; dest should be a struct, not a slice.
// The backend rejects the request if the filters match zero or many rows.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

func (q *Query) addFilter(column, op, value string) *Query {
	q.filters = append(q.filters, filter{column: column, op: op, value: value})
	return q
}

func (q *Query) rawQuery() string {
	params := url.Values{}
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	for _, f := range q.filters {
		params.Add(f.column, f.op+"."+f.value)
	}
	if len(q.order) > 0 {
		params.Set("order", strings.Join(q.order, ","))
	}
	if q.limit > 0 {
		params.Set("limit", strconv.Itoa(q.limit))
	}
	return params.Encode()
}

// Get executes a select and decodes the rows into dest.
func (q *Query) Get(ctx context.Context, dest any) error {
	_, err := q.client.do(ctx, http.MethodGet, q.table, q.rawQuery(), nil, nil, q.single, dest)
	return err
}

// Count executes a select asking only for the exact row count matching the
// filters; no rows are transferred.
func (q *Query) Count(ctx context.Context) (int64, error) {
	headers, err := q.client.do(ctx, http.MethodHead, q.table, q.rawQuery(), nil, []string{"count=exact"}, false, nil)
	if err != nil {
		return 0, err
	}
	return parseContentRange(headers.Get("Content-Range"))
}

// Insert writes one row (struct) or several (slice) and, when dest is
// non-nil, decodes the inserted representation back into it.
func (q *Query) Insert(ctx context.Context, rows any, dest any) error {
	prefer := []string{"return=minimal"}
	if dest != nil {
		prefer = []string{"return=representation"}
	}
	_, err := q.client.do(ctx, http.MethodPost, q.table, q.rawQuery(), rows, prefer, q.single, dest)
	return err
}

// Upsert writes rows like Insert but merges on primary-key conflict instead
// of failing.
func (q *Query) Upsert(ctx context.Context, rows any, dest any) error {
	prefer := []string{"resolution=merge-duplicates", "return=minimal"}
	if dest != nil {
		prefer = []string{"resolution=merge-duplicates", "return=representation"}
	}
	_, err := q.client.do(ctx, http.MethodPost, q.table, q.rawQuery(), rows, prefer, q.single, dest)
	return err
}

// Update applies a partial-field patch to all rows matching the filters
// and, when dest is non-nil, decodes the updated rows back into it.
func (q *Query) Update(ctx context.Context, patch any, dest any) error {
	prefer := []string{"return=minimal"}
	if dest != nil {
		prefer = []string{"return=representation"}
	}
	_, err := q.client.do(ctx, http.MethodPatch, q.table, q.rawQuery(), patch, prefer, q.single, dest)
	return err
}

// Delete removes all rows matching the filters.
func (q *Query) Delete(ctx context.Context) error {
	_, err := q.client.do(ctx, http.MethodDelete, q.table, q.rawQuery(), nil, nil, false, nil)
	return err
}
