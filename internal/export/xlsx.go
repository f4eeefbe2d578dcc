package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"b43/internal/core"
)

// XLSXFileName is the download name for the generated workbook.
const XLSXFileName = "expenses.xlsx"

const sheetName = "Expenses"

// WriteXLSX writes the records as a single-sheet workbook with the same
// columns as the CSV export. Amounts are written as numbers so the sheet
// stays summable.
func WriteXLSX(w io.Writer, records []core.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		row := []any{
			core.FormatDisplayDate(e.Date),
			e.Name,
			e.Category,
			e.Amount.Rupees(),
			string(e.PaymentMethod),
			e.Notes,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
