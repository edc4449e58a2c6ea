// Package supabase talks to the hosted backend: the auth service mounted at
// /auth/v1 and the auto-generated REST interface over the application tables
// mounted at /rest/v1.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/api/metrics"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings required to reach the hosted backend.
type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

// Client is a thin HTTP client over the backend's REST and auth endpoints.
// Requests carry the caller's access token when one is attached to the
// context with ports.WithAccessToken, and the anonymous key otherwise.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	log     zerolog.Logger
}

// New builds a Client. The returned client is safe for concurrent use.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("supabase: invalid url %q", cfg.URL)
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("supabase: anon key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`

	// auth service error fields
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	ErrorName        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *APIError) Error() string {
	msg := e.Message
	for _, alt := range []string{e.Msg, e.ErrorDescription, e.ErrorName} {
		if msg != "" {
			break
		}
		msg = alt
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("supabase: %d: %s", e.Status, msg)
}

// Reason returns the most specific machine-readable code available.
func (e *APIError) Reason() string {
	switch {
	case e.ErrorCode != "":
		return e.ErrorCode
	case e.ErrorName != "":
		return e.ErrorName
	default:
		return e.Code
	}
}

// request describes one backend call.
type request struct {
	operation string // metric label
	table     string // metric label
	method    string
	path      string
	query     url.Values
	token     string // overrides the context token when set
	prefer    string
	body      any
}

func (c *Client) do(ctx context.Context, r request, dest any) error {
	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("supabase: encode %s body: %w", r.table, err)
		}
		body = bytes.NewReader(buf)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("supabase: build request: %w", err)
	}

	token := r.token
	if token == "" {
		token = ports.AccessToken(ctx)
	}
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(r.operation, r.table).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(r.operation, r.table, "transport_error").Inc()
		return fmt.Errorf("supabase: %s %s: %w", r.operation, r.table, err)
	}
	defer resp.Body.Close()

	metrics.BackendRequestsTotal.WithLabelValues(r.operation, r.table, outcome(resp.StatusCode)).Inc()

	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, apiErr)
		}
		c.log.Debug().
			Str("operation", r.operation).
			Str("table", r.table).
			Int("status", resp.StatusCode).
			Str("reason", apiErr.Reason()).
			Msg("backend request failed")
		return apiErr
	}

	if dest == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("supabase: decode %s response: %w", r.table, err)
	}
	return nil
}

func outcome(status int) string {
	switch {
	case status < 300:
		return "ok"
	case status < 500:
		return "client_error"
	default:
		return "server_error"
	}
}

// ── Query builder ─────────────────────────────────────────────────────────────

// Query is a filter over one remote table. Build it with From and chain
// Eq/Order/Limit before calling one of the terminal methods.
type Query struct {
	c      *Client
	table  string
	params url.Values
}

// From starts a query on table.
func (c *Client) From(table string) *Query {
	return &Query{c: c, table: table, params: url.Values{}}
}

// Eq adds a column = value filter.
func (q *Query) Eq(column, value string) *Query {
	q.params.Add(column, "eq."+value)
	return q
}

// Order sorts by column. Multiple calls append further sort keys.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	key := column + "." + dir
	if prev := q.params.Get("order"); prev != "" {
		key = prev + "," + key
	}
	q.params.Set("order", key)
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

func (q *Query) path() string { return "/rest/v1/" + q.table }

// Select decodes every matching row into dest, which must point to a slice.
func (q *Query) Select(ctx context.Context, dest any) error {
	params := cloneValues(q.params)
	params.Set("select", "*")
	return q.c.do(ctx, request{
		operation: "select",
		table:     q.table,
		method:    http.MethodGet,
		path:      q.path(),
		query:     params,
	}, dest)
}

// Insert creates row and decodes the stored representation into dest.
func (q *Query) Insert(ctx context.Context, row any, dest any) error {
	return q.c.do(ctx, request{
		operation: "insert",
		table:     q.table,
		method:    http.MethodPost,
		path:      q.path(),
		query:     cloneValues(q.params),
		prefer:    "return=representation",
		body:      row,
	}, dest)
}

// Update patches every row matching the filters. Calling Update without a
// filter is refused so that a missing Eq never rewrites the whole table.
func (q *Query) Update(ctx context.Context, patch any, dest any) error {
	if len(q.params) == 0 {
		return fmt.Errorf("supabase: update %s without filter", q.table)
	}
	prefer := "return=minimal"
	if dest != nil {
		prefer = "return=representation"
	}
	return q.c.do(ctx, request{
		operation: "update",
		table:     q.table,
		method:    http.MethodPatch,
		path:      q.path(),
		query:     cloneValues(q.params),
		prefer:    prefer,
		body:      patch,
	}, dest)
}

// Upsert inserts row or merges it into the existing row with the same
// primary key.
func (q *Query) Upsert(ctx context.Context, row any, dest any) error {
	return q.c.do(ctx, request{
		operation: "upsert",
		table:     q.table,
		method:    http.MethodPost,
		path:      q.path(),
		query:     cloneValues(q.params),
		prefer:    "resolution=merge-duplicates,return=representation",
		body:      row,
	}, dest)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Ping checks that the backend answers. Used by the readiness check.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, request{
		operation: "health",
		table:     "auth",
		method:    http.MethodGet,
		path:      "/auth/v1/health",
	}, nil)
}
