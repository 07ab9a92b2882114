package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/piwi3910/partquote/internal/nesting"
)

// buildTestBreakdown creates a realistic priced quote for testing.
func buildTestBreakdown() *model.PricingBreakdown {
	return &model.PricingBreakdown{
		QuoteID:            "3f2b7a1c-0000-4000-8000-000000000001",
		Process:            model.ProcessMilling,
		Material:           "AL6061",
		Finish:             "anodize",
		Quantity:           10,
		Tolerance:          "standard",
		LeadTime:           model.LeadTimeStandard,
		MaterialCost:       4.2,
		LaborCost:          31.5,
		SetupCost:          6.75,
		ToolingCost:        3.15,
		FinishCost:         18.4,
		InspectionCost:     5.8,
		DirectCost:         69.8,
		Overhead:           6.98,
		Margin:             6.14,
		Subtotal:           82.92,
		VolumeDiscount:     8.29,
		LeadTimeMultiplier: 1,
		UnitPrice:          74.63,
		TotalPrice:         746.3,
		LeadTimeDays:       model.LeadTimeBreakdown{ProductionDays: 4, FinishingDays: 3, InspectionDays: 1, TotalDays: 8},
		Notes:              []string{"risk: thin walls"},
	}
}

func buildTestGeometry() *model.GeometryData {
	return &model.GeometryData{
		Name:   "bracket.stl",
		Source: model.SourceMesh,
		GeometrySummary: model.GeometrySummary{
			Volume:      42000,
			SurfaceArea: 16000,
			BoundingBox: model.NewBoundingBox(model.Point3D{}, model.Point3D{X: 80, Y: 50, Z: 20}),
			Complexity:  model.ComplexityModerate,
		},
		RecommendedProcess: model.ProcessMilling,
		ProcessConfidence:  0.85,
		FeatureMap:         model.FeatureMap{},
		DFMIssues: []model.DFMIssue{
			{Type: "thin_wall", Severity: model.SeverityWarning, Message: "2 thin walls below 1.5 mm", Recommendation: "Thicken walls."},
		},
		SecondaryOps: []model.SecondaryOperation{{Name: "deburring", Reason: "machined edges"}},
	}
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:5]) != "%PDF-" {
		t.Errorf("missing PDF signature: %q", data[:5])
	}
}

func TestExportQuotePDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.pdf")

	doc := QuoteDocument{
		Geometry:  buildTestGeometry(),
		Breakdown: buildTestBreakdown(),
		Matrix: []model.PriceMatrixEntry{
			{Quantity: 1, PricePerUnit: 140, TotalPrice: 140},
			{Quantity: 10, PricePerUnit: 74.63, TotalPrice: 746.3},
		},
		Comparison: []model.ProcessComparison{
			{Process: model.ProcessMilling, UnitPrice: 74.63, TotalPrice: 746.3, LeadTimeDays: 8, Recommended: true},
			{Process: model.ProcessTurning, UnitPrice: 91, TotalPrice: 910, LeadTimeDays: 8},
		},
		Tolerance: &model.ToleranceFeasibility{ToleranceClass: model.ToleranceStandard, IsAchievable: true, Concerns: []string{"none"}},
		Currency:  "EUR",
	}

	if err := ExportQuotePDF(path, doc); err != nil {
		t.Fatalf("ExportQuotePDF returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportQuotePDF_RequiresBreakdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportQuotePDF(path, QuoteDocument{Geometry: buildTestGeometry()})
	if !errors.Is(err, ErrNoQuote) {
		t.Fatalf("expected ErrNoQuote, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written")
	}
}

func TestExportQuotePDF_ManualQuoteOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.pdf")

	b := buildTestBreakdown()
	b.RequiresManualQuote = true
	b.ManualQuoteReason = "smallest dimension below 0.5 mm"

	if err := ExportQuotePDF(path, QuoteDocument{Breakdown: b}); err != nil {
		t.Fatalf("ExportQuotePDF returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportQuotePDF_WithNestingLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.pdf")

	n := nesting.New(nesting.Settings{Kerf: 2, EdgeTrim: 10})
	var blanks []nesting.Blank
	for i := 0; i < 12; i++ {
		blanks = append(blanks, nesting.Blank{ID: "panel", Width: 300, Length: 400})
	}
	layout := n.Nest(blanks, []model.StockSheet{model.NewStockSheet("Sheet 1250x2500", 1250, 2500)})
	if len(layout.Sheets) == 0 {
		t.Fatal("expected at least one nested sheet")
	}

	b := buildTestBreakdown()
	b.Process = model.ProcessSheetMetal
	b.SheetsRequired = len(layout.Sheets)

	if err := ExportQuotePDF(path, QuoteDocument{Breakdown: b, Layout: &layout}); err != nil {
		t.Fatalf("ExportQuotePDF returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportQuotePDF_LongNotesBreakPages(t *testing.T) {
	b := buildTestBreakdown()
	for i := 0; i < 80; i++ {
		b.Notes = append(b.Notes, "a note long enough to wrap across the width of the report page at nine point Helvetica")
	}

	pdf, err := buildQuotePDF(QuoteDocument{Breakdown: b, Geometry: buildTestGeometry()})
	if err != nil {
		t.Fatalf("buildQuotePDF returned error: %v", err)
	}
	if pdf.PageCount() < 2 {
		t.Errorf("expected the notes to spill onto a second page, got %d pages", pdf.PageCount())
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{100, 50, 8},
		{30, 25, 7},
		{15, 10, 6},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.w, tt.h); got != tt.want {
			t.Errorf("labelFontSize(%.0f, %.0f) = %.0f, want %.0f", tt.w, tt.h, got, tt.want)
		}
	}
}
