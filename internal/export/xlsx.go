package export

import (
	"fmt"
	"sort"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the quote workbook.
const (
	quotesSheet = "Quotes"
	matrixSheet = "Price Matrix"
)

var quoteColumns = []string{
	"File", "Process", "Material", "Finish", "Quantity", "Tolerance", "Lead Time",
	"Unit Price", "Total Price", "Lead Days", "Manual Review", "Error",
}

// ExportQuotesXLSX writes a workbook with one summary row per quote and a
// price matrix sheet: one row per part, one column per quantity.
func ExportQuotesXLSX(path string, results []model.QuoteResult) error {
	if len(results) == 0 {
		return ErrNoQuote
	}
	f, err := buildWorkbook(results)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func buildWorkbook(results []model.QuoteResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", quotesSheet); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeQuotes(f, results, bold); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(matrixSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeMatrix(f, results, bold); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeQuotes(f *excelize.File, results []model.QuoteResult, style int) error {
	header := make([]any, len(quoteColumns))
	for i, c := range quoteColumns {
		header[i] = c
	}
	if err := setRow(f, quotesSheet, 1, header); err != nil {
		return err
	}
	if err := styleHeader(f, quotesSheet, len(quoteColumns), style); err != nil {
		return err
	}

	for i, r := range results {
		row := []any{r.Request.File}
		if b := r.Breakdown; b != nil {
			row = append(row, string(b.Process), b.Material, b.Finish, b.Quantity, b.Tolerance,
				string(b.LeadTime), b.UnitPrice, b.TotalPrice, b.LeadTimeDays.TotalDays, b.RequiresManualQuote, r.Error)
		} else {
			row = append(row, r.Request.Process, r.Request.Material, r.Request.Finish, r.Request.Quantity,
				r.Request.Tolerance, r.Request.LeadTime, nil, nil, nil, nil, r.Error)
		}
		if err := setRow(f, quotesSheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(quotesSheet, "A", "A", 32)
}

// matrixQuantities is the sorted union of quantities across all matrices.
func matrixQuantities(results []model.QuoteResult) []int {
	seen := make(map[int]bool)
	var qs []int
	for _, r := range results {
		for _, e := range r.Matrix {
			if !seen[e.Quantity] {
				seen[e.Quantity] = true
				qs = append(qs, e.Quantity)
			}
		}
	}
	sort.Ints(qs)
	return qs
}

func writeMatrix(f *excelize.File, results []model.QuoteResult, style int) error {
	qs := matrixQuantities(results)
	header := []any{"File"}
	col := make(map[int]int, len(qs))
	for i, q := range qs {
		header = append(header, fmt.Sprintf("Qty %d", q))
		col[q] = i + 1
	}
	if err := setRow(f, matrixSheet, 1, header); err != nil {
		return err
	}
	if err := styleHeader(f, matrixSheet, len(header), style); err != nil {
		return err
	}

	row := 2
	for _, r := range results {
		if len(r.Matrix) == 0 {
			continue
		}
		values := make([]any, len(header))
		values[0] = r.Request.File
		for _, e := range r.Matrix {
			values[col[e.Quantity]] = e.PricePerUnit
		}
		if err := setRow(f, matrixSheet, row, values); err != nil {
			return err
		}
		row++
	}
	return f.SetColWidth(matrixSheet, "A", "A", 32)
}
