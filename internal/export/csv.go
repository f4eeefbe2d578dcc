// Package export serializes expense lists for download, as CSV and as an
// XLSX workbook.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"b43/internal/core"
)

// CSVFileName is the download name for the generated CSV artifact.
const CSVFileName = "expenses.csv"

var header = []string{"Date", "Expense Name", "Category", "Amount", "Payment Method", "Notes"}

// WriteCSV writes the records as CSV. Every cell is quoted with embedded
// quotes doubled, and rows are joined by a bare newline, so the output is
// byte-stable regardless of cell content.
func WriteCSV(w io.Writer, records []core.Expense) error {
	var b strings.Builder
	writeRow(&b, header)
	for _, e := range records {
		b.WriteByte('\n')
		writeRow(&b, row(e))
	}
	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func row(e core.Expense) []string {
	return []string{
		core.FormatDisplayDate(e.Date),
		e.Name,
		e.Category,
		amountCell(e.Amount),
		string(e.PaymentMethod),
		e.Notes,
	}
}

// amountCell renders the raw decimal value, without currency symbol or
// grouping, the way the backend reports it.
func amountCell(m core.Money) string {
	return strconv.FormatFloat(m.Rupees(), 'f', -1, 64)
}

func writeRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(c, `"`, `""`))
		b.WriteByte('"')
	}
}
