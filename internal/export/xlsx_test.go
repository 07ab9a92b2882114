package export

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/xuri/excelize/v2"
)

func TestExportQuotesXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.xlsx")

	results := buildLabelsTestResults()
	results[0].Matrix = []model.PriceMatrixEntry{
		{Quantity: 1, PricePerUnit: 140},
		{Quantity: 10, PricePerUnit: 74.63},
	}
	results[2].Matrix = []model.PriceMatrixEntry{
		{Quantity: 5, PricePerUnit: 90},
		{Quantity: 10, PricePerUnit: 80},
	}

	if err := ExportQuotesXLSX(path, results); err != nil {
		t.Fatalf("ExportQuotesXLSX returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("cannot reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(quotesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 quote rows, got %d", len(rows))
	}
	if rows[0][0] != "File" || rows[1][0] != "parts/bracket.stl" {
		t.Errorf("unexpected first column: %q, %q", rows[0][0], rows[1][0])
	}
	if rows[1][2] != "AL6061" {
		t.Errorf("expected material AL6061, got %q", rows[1][2])
	}
	if last := rows[2][len(rows[2])-1]; last != "truncated triangle data" {
		t.Errorf("expected error text in the last column, got %q", last)
	}

	matrix, err := f.GetRows(matrixSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(matrix) != 3 {
		t.Fatalf("expected header plus 2 matrix rows, got %d", len(matrix))
	}
	want := []string{"File", "Qty 1", "Qty 5", "Qty 10"}
	for i, h := range want {
		if matrix[0][i] != h {
			t.Errorf("matrix header %d = %q, want %q", i, matrix[0][i], h)
		}
	}
	if matrix[2][0] != "parts/foil.step" || matrix[2][1] != "" || matrix[2][2] != "90" {
		t.Errorf("unexpected matrix row %v", matrix[2])
	}
}

func TestExportQuotesXLSX_Empty(t *testing.T) {
	err := ExportQuotesXLSX(filepath.Join(t.TempDir(), "none.xlsx"), nil)
	if !errors.Is(err, ErrNoQuote) {
		t.Fatalf("expected ErrNoQuote, got %v", err)
	}
}

func TestMatrixQuantities(t *testing.T) {
	results := []model.QuoteResult{
		{Matrix: []model.PriceMatrixEntry{{Quantity: 50}, {Quantity: 1}}},
		{Matrix: []model.PriceMatrixEntry{{Quantity: 10}, {Quantity: 50}}},
	}
	got := matrixQuantities(results)
	want := []int{1, 10, 50}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
