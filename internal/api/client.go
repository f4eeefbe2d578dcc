// Package api is the HTTP client for the expense backend. The backend owns
// all persistence and file storage; this client only moves records and
// multipart forms across the wire.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"b43/internal/core"
)

// DefaultBaseURL points at a local development backend.
const DefaultBaseURL = "http://localhost:8000"

// maxErrorBody caps how much of an error response body is read.
const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	hc      *http.Client
}

// New creates a client for the backend at baseURL. An empty baseURL falls
// back to the local development endpoint.
func New(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      newPooledHTTPClient(timeout),
	}
}

// BaseURL returns the configured backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// newPooledHTTPClient builds an HTTP client with connection pooling and
// conservative timeouts for repeated calls against one backend host.
func newPooledHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// List fetches all expenses, optionally narrowed server-side by a free-text
// query over name and category. An empty query returns the full set.
func (c *Client) List(ctx context.Context, query string) ([]core.Expense, error) {
	u := c.baseURL + "/api/expenses"
	if query != "" {
		u += "?q=" + url.QueryEscape(query)
	}
	var dtos []expenseDTO
	if err := c.getJSON(ctx, u, &dtos); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Stats fetches the backend-computed aggregate over the full dataset.
func (c *Client) Stats(ctx context.Context) (core.Stats, error) {
	var dto statsDTO
	if err := c.getJSON(ctx, c.baseURL+"/api/expenses/stats", &dto); err != nil {
		return core.Stats{}, fmt.Errorf("fetch stats: %w", err)
	}
	return core.Stats{
		TotalExpenses: core.MoneyFromRupees(dto.TotalExpenses),
		TotalEntries:  dto.TotalEntries,
		DateRange:     dto.DateRange,
		AvgExpense:    core.MoneyFromRupees(dto.AvgExpense),
	}, nil
}

// Get fetches a single expense by id.
func (c *Client) Get(ctx context.Context, id int64) (core.Expense, error) {
	var dto expenseDTO
	u := c.baseURL + "/api/expenses/" + strconv.FormatInt(id, 10)
	if err := c.getJSON(ctx, u, &dto); err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return dto.toDomain(), nil
}

// Create submits a new expense as a multipart form, including the optional
// proof file, and returns the created record with its backend-assigned id.
func (c *Client) Create(ctx context.Context, form ExpenseForm) (core.Expense, error) {
	e, err := c.submit(ctx, http.MethodPost, c.baseURL+"/api/expenses/upload", form)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

// Update replaces fields of an existing expense, optionally replacing the
// proof file, and returns the updated record.
func (c *Client) Update(ctx context.Context, id int64, form ExpenseForm) (core.Expense, error) {
	u := c.baseURL + "/api/expenses/" + strconv.FormatInt(id, 10)
	e, err := c.submit(ctx, http.MethodPut, u, form)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}
	return e, nil
}

func (c *Client) getJSON(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) submit(ctx context.Context, method, u string, form ExpenseForm) (core.Expense, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := writeForm(mw, form); err != nil {
		return core.Expense{}, err
	}
	if err := mw.Close(); err != nil {
		return core.Expense{}, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, &body)
	if err != nil {
		return core.Expense{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return core.Expense{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp)
		slog.WarnContext(ctx, "Backend rejected expense write",
			"method", method, "url", u, "status", resp.StatusCode, "detail", apiErr.Detail)
		return core.Expense{}, apiErr
	}

	var dto expenseDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return core.Expense{}, fmt.Errorf("decode response: %w", err)
	}
	return dto.toDomain(), nil
}

func writeForm(mw *multipart.Writer, form ExpenseForm) error {
	fields := map[string]string{
		"date":           form.Date,
		"name":           form.Name,
		"category":       form.Category,
		"floor":          form.Floor,
		"amount":         form.Amount,
		"payment_method": form.PaymentMethod,
		"notes":          form.Notes,
	}
	for _, name := range []string{"date", "name", "category", "floor", "amount", "payment_method", "notes"} {
		if err := mw.WriteField(name, fields[name]); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if form.File == nil {
		return nil
	}
	// CreateFormFile would pin the part to application/octet-stream; the
	// backend checks the declared content type, so build the part header.
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(form.File.Name)))
	h.Set("Content-Type", form.File.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, form.File.Reader); err != nil {
		return fmt.Errorf("copy proof file: %w", err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
