package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"b43/internal/api"
	"b43/internal/core"
	"b43/internal/services"
)

type fakeBackend struct {
	items     []core.Expense
	stats     core.Stats
	createErr error
	updateErr error
	created   *api.ExpenseForm
}

func (f *fakeBackend) List(ctx context.Context, query string) ([]core.Expense, error) {
	return f.items, nil
}

func (f *fakeBackend) Stats(ctx context.Context) (core.Stats, error) {
	return f.stats, nil
}

func (f *fakeBackend) Get(ctx context.Context, id int64) (core.Expense, error) {
	for _, e := range f.items {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, &api.APIError{StatusCode: http.StatusNotFound, Detail: "Expense not found"}
}

func (f *fakeBackend) Create(ctx context.Context, form api.ExpenseForm) (core.Expense, error) {
	if f.createErr != nil {
		return core.Expense{}, f.createErr
	}
	f.created = &form
	return core.Expense{ID: 99, Date: form.Date, Name: form.Name}, nil
}

func (f *fakeBackend) Update(ctx context.Context, id int64, form api.ExpenseForm) (core.Expense, error) {
	if f.updateErr != nil {
		return core.Expense{}, f.updateErr
	}
	return core.Expense{ID: id, Date: form.Date, Name: form.Name}, nil
}

func testBackend() *fakeBackend {
	return &fakeBackend{
		items: []core.Expense{
			{ID: 1, Date: "2024-01-05", Name: "Cement bags", Category: "Cement", Floor: core.FloorGround, Amount: core.Money{Cents: 45000}, PaymentMethod: core.PayUPI, Notes: "ground floor slab", ProofURL: "/uploads/1.jpg"},
			{ID: 2, Date: "2024-01-10", Name: "TMT rods", Category: "Steel (Rebar)", Amount: core.Money{Cents: 120000}, PaymentMethod: core.PayCash, Notes: "2nd floor work", ProofURL: "/uploads/2.pdf"},
		},
		stats: core.Stats{
			TotalExpenses: core.Money{Cents: 165000},
			TotalEntries:  2,
			DateRange:     "2024-01-05 — 2024-01-10",
			AvgExpense:    core.Money{Cents: 82500},
		},
	}
}

func newTestServer(fb *fakeBackend) *Server {
	svc := services.NewExpenseService(fb, nil, 10, time.Minute)
	return NewServer(":0", svc, "http://backend:8000")
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func postForm(t *testing.T, srv *Server, target string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func validFields() map[string]string {
	return map[string]string{
		"date":           "2024-01-05",
		"name":           "Cement bags",
		"category":       "Cement",
		"floor":          "Ground Floor",
		"amount":         "450",
		"payment_method": "UPI",
		"notes":          "50 bags",
	}
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(testBackend())
	rr := get(t, srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"Cement bags",
		"TMT rods",
		"₹1,650.00",                // total
		"05 Jan, 2024 — 10 Jan, 2024", // formatted range
		"05 Jan, 2024",             // formatted row date
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
	// PDF proof gets a download link, image proof a view link.
	if !strings.Contains(body, ">Download</a>") || !strings.Contains(body, ">View</a>") {
		t.Fatal("proof links missing")
	}
	if !strings.Contains(body, "http://backend:8000/uploads/1.jpg") {
		t.Fatal("relative proof URL not absolutized")
	}
}

func TestDashboardFloorFilterSearchesNotes(t *testing.T) {
	srv := newTestServer(testBackend())
	rr := get(t, srv, "/?filter_type=floor&filter_value=2nd")
	body := rr.Body.String()
	if strings.Contains(body, "Cement bags") {
		t.Fatal("record without matching notes should be filtered out")
	}
	if !strings.Contains(body, "TMT rods") {
		t.Fatal("record with matching notes missing")
	}
	if !strings.Contains(body, "₹1,200.00") {
		t.Fatal("filtered total not recomputed")
	}
}

func TestAddAndEditPages(t *testing.T) {
	srv := newTestServer(testBackend())

	rr := get(t, srv, "/add")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Add New Expense") {
		t.Fatalf("add page: status=%d", rr.Code)
	}

	rr = get(t, srv, "/edit/1")
	if rr.Code != http.StatusOK {
		t.Fatalf("edit page: status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Cement bags") {
		t.Fatal("edit page not prefilled")
	}

	rr = get(t, srv, "/edit/999")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing expense: status=%d, want 404", rr.Code)
	}
	rr = get(t, srv, "/edit/abc")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("bad id: status=%d, want 404", rr.Code)
	}
}

func TestCreateExpense(t *testing.T) {
	fb := testBackend()
	srv := newTestServer(fb)

	rr := postForm(t, srv, "/expenses", validFields())
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Fatalf("redirect = %q", loc)
	}
	if fb.created == nil || fb.created.Name != "Cement bags" {
		t.Fatalf("backend form = %+v", fb.created)
	}
}

func TestCreateExpenseValidationFailure(t *testing.T) {
	srv := newTestServer(testBackend())

	fields := validFields()
	fields["amount"] = "abc"
	rr := postForm(t, srv, "/expenses", fields)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "error-banner") {
		t.Fatal("error banner missing")
	}
	// The submitted values survive the re-render.
	if !strings.Contains(rr.Body.String(), "Cement bags") {
		t.Fatal("form values not preserved")
	}
}

func TestCreateExpenseBackendDetailSurfaces(t *testing.T) {
	fb := testBackend()
	fb.createErr = &api.APIError{StatusCode: 422, Detail: "Amount must be positive"}
	srv := newTestServer(fb)

	rr := postForm(t, srv, "/expenses", validFields())
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Amount must be positive") {
		t.Fatal("backend detail not shown to the user")
	}
}

func TestUpdateExpense(t *testing.T) {
	srv := newTestServer(testBackend())
	rr := postForm(t, srv, "/expenses/1", validFields())
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	rr = postForm(t, srv, "/expenses/abc", validFields())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("bad id: status = %d, want 404", rr.Code)
	}
}

func TestSuggest(t *testing.T) {
	srv := newTestServer(testBackend())
	rr := get(t, srv, "/suggest?q=sariya")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `value="Steel (Rebar)"`) {
		t.Fatalf("suggestions missing, body = %q", rr.Body.String())
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(testBackend())
	rr := get(t, srv, "/export.csv")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="expenses.csv"`) {
		t.Fatalf("content disposition = %q", cd)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, `"Date","Expense Name"`) {
		t.Fatalf("csv header missing, got %q", body[:40])
	}
	if !strings.Contains(body, `"Cement bags"`) {
		t.Fatal("csv rows missing")
	}
}

func TestExportCSVHonorsFilters(t *testing.T) {
	srv := newTestServer(testBackend())
	rr := get(t, srv, "/export.csv?filter_type=category&filter_value=steel")
	body := rr.Body.String()
	if strings.Contains(body, "Cement bags") {
		t.Fatal("filtered-out record present in export")
	}
	if !strings.Contains(body, "TMT rods") {
		t.Fatal("matching record missing from export")
	}
}

func TestExportXLSX(t *testing.T) {
	srv := newTestServer(testBackend())
	rr := get(t, srv, "/export.xlsx")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="expenses.xlsx"`) {
		t.Fatalf("content disposition = %q", cd)
	}
	// XLSX files are zip archives.
	if body := rr.Body.Bytes(); len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Fatal("response is not a zip archive")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(testBackend())
	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(t, srv, path); rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(testBackend())
	rr := get(t, srv, "/")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing X-Content-Type-Options")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Fatal("missing Content-Security-Policy")
	}
}

func TestRateLimitAppliesToWrites(t *testing.T) {
	srv := newTestServer(testBackend())
	srv.rateLimiter = newRateLimiter(2, time.Minute)
	defer srv.rateLimiter.stop()

	for i := 0; i < 2; i++ {
		if rr := postForm(t, srv, "/expenses", validFields()); rr.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d rate limited early", i+1)
		}
	}
	rr := postForm(t, srv, "/expenses", validFields())
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Fatal("missing Retry-After header")
	}
	// Reads are never limited.
	if rr := get(t, srv, "/"); rr.Code != http.StatusOK {
		t.Fatalf("read was limited: %d", rr.Code)
	}
}
