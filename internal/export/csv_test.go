package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"b43/internal/core"
)

func sample() []core.Expense {
	return []core.Expense{
		{
			Date:          "2024-01-05",
			Name:          "Cement bags",
			Category:      "Cement",
			Amount:        core.Money{Cents: 45000},
			PaymentMethod: core.PayUPI,
			Notes:         "50 bags, OPC 53",
		},
		{
			Date:          "2024-01-10",
			Name:          `Rods 12mm "TMT"`,
			Category:      "Steel (Rebar)",
			Amount:        core.Money{Cents: 120050},
			PaymentMethod: core.PayBankTransfer,
			Notes:         "line1\nline2",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var b strings.Builder
	if err := WriteCSV(&b, sample()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := b.String()

	if !strings.HasPrefix(out, `"Date","Expense Name","Category","Amount","Payment Method","Notes"`) {
		t.Fatalf("missing header, got %q", out[:60])
	}
	if strings.HasSuffix(out, "\n") {
		t.Fatal("unexpected trailing newline")
	}
	if !strings.Contains(out, `"Rods 12mm ""TMT"""`) {
		t.Fatal("embedded quotes not doubled")
	}
	if !strings.Contains(out, `"450"`) {
		t.Fatalf("amount cell missing, got %q", out)
	}
	if !strings.Contains(out, `"05 Jan, 2024"`) {
		t.Fatal("date not formatted for display")
	}

	// A standard CSV reader must round-trip the output, including the
	// multi-line notes cell.
	r := csv.NewReader(strings.NewReader(out))
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if len(row) != 6 {
			t.Fatalf("row %d has %d columns, want 6", i, len(row))
		}
	}
	if rows[2][5] != "line1\nline2" {
		t.Fatalf("notes cell = %q, want multi-line value", rows[2][5])
	}
	if rows[1][3] != "450" {
		t.Fatalf("amount cell = %q, want 450", rows[1][3])
	}
	if rows[2][3] != "1200.5" {
		t.Fatalf("amount cell = %q, want 1200.5", rows[2][3])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var b strings.Builder
	if err := WriteCSV(&b, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := `"Date","Expense Name","Category","Amount","Payment Method","Notes"`
	if b.String() != want {
		t.Fatalf("empty export = %q, want header only", b.String())
	}
}
