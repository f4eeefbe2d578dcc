package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"b43/internal/api"
	"b43/internal/catalog"
	"b43/internal/core"
	"b43/internal/export"
	"b43/internal/filter"
	"b43/internal/services"
)

// floors and paymentMethods feed the form selects.
var floors = []core.Floor{core.FloorBasement, core.FloorGround, core.FloorFirst, core.FloorSecond}

var paymentMethods = []core.PaymentMethod{core.PayCash, core.PayCard, core.PayUPI, core.PayBankTransfer}

type expenseRow struct {
	ID            int64
	Date          string
	Name          string
	Category      string
	Amount        string
	PaymentMethod string
	Floor         string
	Notes         string
	Proof         *proofLink
}

type dashboardData struct {
	TotalAll      string
	TotalFiltered string
	CountFiltered int
	DateRange     string
	AvgExpense    string
	Query         string
	FilterType    string
	FilterValue   string
	DateFrom      string
	DateTo        string
	Rows          []expenseRow
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	crit := parseCriteria(r)

	var (
		stats core.Stats
		items []core.Expense
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		items, err = s.svc.ListExpenses(ctx, q)
		return err
	})
	g.Go(func() error {
		st, err := s.svc.GetStats(ctx)
		if err != nil {
			// The dashboard still renders without the aggregate cards
			slog.ErrorContext(ctx, "Stats fetch error", "error", err)
			return nil
		}
		stats = st
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(r.Context(), "Expense list error", "error", err, "query", q)
		http.Error(w, "failed to load expenses", http.StatusBadGateway)
		return
	}

	filtered := filter.Apply(items, crit)

	data := dashboardData{
		TotalAll:      core.FormatINR(stats.TotalExpenses),
		TotalFiltered: core.FormatINR(filter.Total(filtered)),
		CountFiltered: len(filtered),
		DateRange:     core.FormatRange(stats.DateRange),
		AvgExpense:    core.FormatINR(stats.AvgExpense),
		Query:         q,
		FilterType:    string(crit.Field),
		FilterValue:   crit.Value,
		DateFrom:      crit.DateFrom,
		DateTo:        crit.DateTo,
		Rows:          make([]expenseRow, 0, len(filtered)),
	}
	for _, e := range filtered {
		data.Rows = append(data.Rows, expenseRow{
			ID:            e.ID,
			Date:          core.FormatDisplayDate(e.Date),
			Name:          e.Name,
			Category:      e.Category,
			Amount:        amountString(e.Amount),
			PaymentMethod: string(e.PaymentMethod),
			Floor:         string(e.Floor),
			Notes:         e.Notes,
			Proof:         newProofLink(s.apiBase, e.ProofURL),
		})
	}

	s.render(w, r, "index.html", data)
}

type formData struct {
	Title          string
	Action         string
	Error          string
	Form           api.ExpenseForm
	ExpenseID      int64
	ProofURL       string
	Floors         []core.Floor
	PaymentMethods []core.PaymentMethod
}

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "add.html", formData{
		Title:  "Add New Expense",
		Action: "/expenses",
		Form: api.ExpenseForm{
			Date:          time.Now().Format(core.DateLayout),
			PaymentMethod: string(core.PayCash),
		},
		Floors:         floors,
		PaymentMethods: paymentMethods,
	})
}

func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	e, err := s.svc.GetExpense(r.Context(), id)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Get expense error", "error", err, "id", id)
		http.Error(w, "failed to load expense", http.StatusBadGateway)
		return
	}
	s.render(w, r, "edit.html", formData{
		Title:          "Edit Expense",
		Action:         "/expenses/" + r.PathValue("id"),
		Form:           formFromExpense(e),
		ExpenseID:      id,
		ProofURL:       absoluteProofURL(s.apiBase, e.ProofURL),
		Floors:         floors,
		PaymentMethods: paymentMethods,
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	form, cleanup, err := formFromRequest(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	defer cleanup()

	if _, err := s.svc.CreateExpense(r.Context(), form); err != nil {
		s.renderWriteFailure(w, r, "add.html", formData{
			Title:          "Add New Expense",
			Action:         "/expenses",
			Error:          userMessage(err, "Failed to save expense"),
			Form:           form,
			Floors:         floors,
			PaymentMethods: paymentMethods,
		}, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	form, cleanup, err := formFromRequest(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	defer cleanup()

	if _, err := s.svc.UpdateExpense(r.Context(), id, form); err != nil {
		s.renderWriteFailure(w, r, "edit.html", formData{
			Title:          "Edit Expense",
			Action:         "/expenses/" + r.PathValue("id"),
			Error:          userMessage(err, "Failed to update expense"),
			Form:           form,
			ExpenseID:      id,
			Floors:         floors,
			PaymentMethods: paymentMethods,
		}, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderWriteFailure re-renders the form with a visible error banner. The
// status distinguishes local validation failures from backend rejections.
func (s *Server) renderWriteFailure(w http.ResponseWriter, r *http.Request, name string, data formData, err error) {
	status := http.StatusBadGateway
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		status = http.StatusUnprocessableEntity
	} else if isValidationError(err) {
		status = http.StatusUnprocessableEntity
	}
	w.WriteHeader(status)
	s.render(w, r, name, data)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	names := catalog.Suggest(r.URL.Query().Get("q"))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.render(w, r, "suggestions.html", names)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filtered, err := s.filteredExpenses(r)
	if err != nil {
		http.Error(w, "failed to load expenses", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.CSVFileName+`"`)
	if err := export.WriteCSV(w, filtered); err != nil {
		slog.ErrorContext(r.Context(), "CSV export error", "error", err)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	filtered, err := s.filteredExpenses(r)
	if err != nil {
		http.Error(w, "failed to load expenses", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.XLSXFileName+`"`)
	if err := export.WriteXLSX(w, filtered); err != nil {
		slog.ErrorContext(r.Context(), "XLSX export error", "error", err)
	}
}

// filteredExpenses fetches the list and applies the same filter params the
// dashboard uses, so downloads match what is on screen.
func (s *Server) filteredExpenses(r *http.Request) ([]core.Expense, error) {
	items, err := s.svc.ListExpenses(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense list error", "error", err)
		return nil, err
	}
	return filter.Apply(items, parseCriteria(r)), nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrInvalidFloor) ||
		errors.Is(err, core.ErrInvalidPaymentMethod) ||
		errors.Is(err, services.ErrMissingID)
}
