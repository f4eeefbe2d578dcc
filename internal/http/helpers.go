package http

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"b43/internal/api"
	"b43/internal/core"
	"b43/internal/filter"
)

// parseCriteria extracts the field filter and date range from query params.
func parseCriteria(r *http.Request) filter.Criteria {
	q := r.URL.Query()
	return filter.Criteria{
		Field:    filter.ParseField(q.Get("filter_type")),
		Value:    q.Get("filter_value"),
		DateFrom: strings.TrimSpace(q.Get("date_from")),
		DateTo:   strings.TrimSpace(q.Get("date_to")),
	}
}

// formFromRequest builds the backend form from a multipart submission. The
// returned cleanup closes the uploaded file and must always be called.
func formFromRequest(r *http.Request) (api.ExpenseForm, func(), error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return api.ExpenseForm{}, func() {}, fmt.Errorf("parse multipart form: %w", err)
	}
	form := api.ExpenseForm{
		Date:          strings.TrimSpace(r.FormValue("date")),
		Name:          sanitizeInput(r.FormValue("name")),
		Category:      sanitizeInput(r.FormValue("category")),
		Floor:         strings.TrimSpace(r.FormValue("floor")),
		Amount:        strings.TrimSpace(r.FormValue("amount")),
		PaymentMethod: strings.TrimSpace(r.FormValue("payment_method")),
		Notes:         sanitizeInput(r.FormValue("notes")),
	}

	f, fh, err := r.FormFile("file")
	switch {
	case err == nil && fh.Filename != "":
		form.File = &api.FileAttachment{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		}
		return form, func() { _ = f.Close() }, nil
	case err == nil:
		_ = f.Close()
	case !errors.Is(err, http.ErrMissingFile):
		return api.ExpenseForm{}, func() {}, fmt.Errorf("read proof file: %w", err)
	}
	return form, func() {}, nil
}

func formFromExpense(e core.Expense) api.ExpenseForm {
	return api.ExpenseForm{
		Date:          e.Date,
		Name:          e.Name,
		Category:      e.Category,
		Floor:         string(e.Floor),
		Amount:        amountString(e.Amount),
		PaymentMethod: string(e.PaymentMethod),
		Notes:         e.Notes,
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid expense id %q", r.PathValue("id"))
	}
	return id, nil
}

// proofLink is a resolved reference to an uploaded proof file. PDFs get a
// download link, everything else a view link.
type proofLink struct {
	URL      string
	PDF      bool
	FileName string
}

func newProofLink(base, raw string) *proofLink {
	if raw == "" {
		return nil
	}
	u := absoluteProofURL(base, raw)
	name := path.Base(raw)
	pdf := strings.HasSuffix(strings.ToLower(raw), ".pdf")
	if pdf && name == "" {
		name = "proof.pdf"
	}
	return &proofLink{URL: u, PDF: pdf, FileName: name}
}

// absoluteProofURL joins a relative proof reference to the backend base URL;
// absolute references pass through untouched.
func absoluteProofURL(base, raw string) string {
	if raw == "" || strings.HasPrefix(raw, "http") {
		return raw
	}
	return strings.TrimRight(base, "/") + raw
}

// amountString renders the plain decimal value with two fraction digits, the
// way the forms and table show amounts.
func amountString(m core.Money) string {
	return strconv.FormatFloat(m.Rupees(), 'f', 2, 64)
}

// userMessage maps a write failure to what the user sees: the backend's
// detail when it gave one, the validation message for local failures, and a
// generic fallback otherwise.
func userMessage(err error, fallback string) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if isValidationError(err) {
		return err.Error()
	}
	return fallback
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
