package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"b43/internal/core"
)

// expenseDTO is the backend's JSON shape for one record. Amounts travel as
// decimal numbers; optional columns may be null.
type expenseDTO struct {
	ID            int64   `json:"id"`
	Date          string  `json:"date"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Floor         *string `json:"floor"`
	Notes         *string `json:"notes"`
	ProofURL      *string `json:"proof_url"`
}

func (d expenseDTO) toDomain() core.Expense {
	return core.Expense{
		ID:            d.ID,
		Date:          d.Date,
		Name:          d.Name,
		Category:      d.Category,
		Floor:         core.Floor(deref(d.Floor)),
		Amount:        core.MoneyFromRupees(d.Amount),
		PaymentMethod: core.PaymentMethod(d.PaymentMethod),
		Notes:         deref(d.Notes),
		ProofURL:      deref(d.ProofURL),
	}
}

type statsDTO struct {
	TotalExpenses float64 `json:"total_expenses"`
	TotalEntries  int     `json:"total_entries"`
	DateRange     string  `json:"date_range"`
	AvgExpense    float64 `json:"avg_expense"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FileAttachment is an optional proof file streamed into the multipart body.
type FileAttachment struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// ExpenseForm carries the raw form fields of a create or update submission.
// Values stay strings until validated; the backend parses them again on its
// side of the wire.
type ExpenseForm struct {
	Date          string
	Name          string
	Category      string
	Floor         string
	Amount        string
	PaymentMethod string
	Notes         string
	File          *FileAttachment
}

// Validate performs the required-field checks that must pass before any
// network call is made.
func (f ExpenseForm) Validate() error {
	if _, err := core.ParseDate(f.Date); err != nil {
		return err
	}
	cents, err := core.ParseDecimalToCents(f.Amount)
	if err != nil {
		return err
	}
	probe := core.Expense{
		Date:          f.Date,
		Name:          f.Name,
		Category:      f.Category,
		Floor:         core.Floor(f.Floor),
		Amount:        core.Money{Cents: cents},
		PaymentMethod: core.PaymentMethod(f.PaymentMethod),
		Notes:         f.Notes,
	}
	return probe.Validate()
}

// APIError is a non-2xx backend response. Detail carries the backend's
// human-readable explanation when one was provided.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// newAPIError drains up to maxErrorBody of the response looking for a
// {"detail": ...} payload. Non-string details are kept as compact JSON.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return apiErr
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		apiErr.Detail = s
	} else {
		apiErr.Detail = string(payload.Detail)
	}
	return apiErr
}
