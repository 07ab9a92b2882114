// Package export writes quotes to PDF reports, label sheets, spreadsheets
// and DXF flat patterns.
package export

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/piwi3910/partquote/internal/nesting"
)

// ErrNoQuote is returned when there is nothing priced to export.
var ErrNoQuote = errors.New("no priced quote to export")

// partColor represents an RGB color for a nested blank.
type partColor struct {
	R, G, B int
}

var partColors = []partColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	contentWidth = pageWidth - marginLeft - marginRight
	rowHeight    = 6.0
)

// QuoteDocument is everything rendered into a quote report. Only Breakdown
// is required.
type QuoteDocument struct {
	Title      string
	Geometry   *model.GeometryData
	Breakdown  *model.PricingBreakdown
	Matrix     []model.PriceMatrixEntry
	Comparison []model.ProcessComparison
	Tolerance  *model.ToleranceFeasibility
	Layout     *nesting.Result // sheet-metal nesting, one page per sheet
	Currency   string
}

func (d QuoteDocument) money(v float64) string {
	cur := d.Currency
	if cur == "" {
		cur = "USD"
	}
	return fmt.Sprintf("%s %.2f", cur, v)
}

// ExportQuotePDF renders a quote report: part summary, cost breakdown,
// quantity matrix, process comparison, manufacturability notes and, for
// sheet-metal quotes, one nesting layout page per sheet.
func ExportQuotePDF(path string, doc QuoteDocument) error {
	pdf, err := buildQuotePDF(doc)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

func buildQuotePDF(doc QuoteDocument) (*fpdf.Fpdf, error) {
	if doc.Breakdown == nil {
		return nil, ErrNoQuote
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	r := &reportWriter{pdf: pdf, y: marginTop}
	r.header(doc)
	if doc.Geometry != nil {
		r.partSummary(doc.Geometry)
	}
	r.costBreakdown(doc)
	if len(doc.Matrix) > 0 {
		r.matrix(doc)
	}
	if len(doc.Comparison) > 0 {
		r.comparison(doc)
	}
	if doc.Tolerance != nil {
		r.tolerance(doc.Tolerance)
	}
	if doc.Geometry != nil {
		r.manufacturability(doc.Geometry)
	}
	r.notes(doc.Breakdown)
	r.footer()

	if doc.Layout != nil {
		for i, sheet := range doc.Layout.Sheets {
			pdf.AddPage()
			renderSheetPage(pdf, sheet, i+1)
		}
	}
	return pdf, pdf.Error()
}

// reportWriter tracks the vertical cursor and breaks pages as sections grow.
type reportWriter struct {
	pdf *fpdf.Fpdf
	y   float64
}

func (r *reportWriter) ensure(h float64) {
	if r.y+h > pageHeight-marginBottom-6 {
		r.footer()
		r.pdf.AddPage()
		r.y = marginTop
	}
}

func (r *reportWriter) section(title string) {
	r.ensure(3 * rowHeight)
	r.y += 4
	r.pdf.SetFont("Helvetica", "B", 12)
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.SetXY(marginLeft, r.y)
	r.pdf.CellFormat(contentWidth, 7, title, "", 0, "L", false, 0, "")
	r.y += 8
}

func (r *reportWriter) keyValues(items [][2]string) {
	r.pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		r.ensure(rowHeight)
		r.pdf.SetXY(marginLeft+5, r.y)
		r.pdf.CellFormat(60, rowHeight, item[0]+":", "", 0, "L", false, 0, "")
		r.pdf.SetFont("Helvetica", "B", 10)
		r.pdf.CellFormat(contentWidth-65, rowHeight, item[1], "", 0, "L", false, 0, "")
		r.pdf.SetFont("Helvetica", "", 10)
		r.y += rowHeight
	}
}

// table draws a bordered table with a shaded header and alternating rows.
func (r *reportWriter) table(widths []float64, headers []string, rows [][]string) {
	r.ensure(2 * rowHeight)
	r.pdf.SetFont("Helvetica", "B", 9)
	r.pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for i, h := range headers {
		r.pdf.SetXY(x, r.y)
		r.pdf.CellFormat(widths[i], rowHeight, h, "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	r.y += rowHeight

	r.pdf.SetFont("Helvetica", "", 9)
	for i, row := range rows {
		r.ensure(rowHeight)
		if i%2 == 0 {
			r.pdf.SetFillColor(245, 245, 245)
		} else {
			r.pdf.SetFillColor(255, 255, 255)
		}
		x = marginLeft
		for j, cell := range row {
			align := "R"
			if j == 0 {
				align = "L"
			}
			r.pdf.SetXY(x, r.y)
			r.pdf.CellFormat(widths[j], rowHeight, cell, "1", 0, align, true, 0, "")
			x += widths[j]
		}
		r.y += rowHeight
	}
}

func (r *reportWriter) paragraph(text string) {
	r.pdf.SetFont("Helvetica", "", 9)
	lines := r.pdf.SplitText(text, contentWidth-5)
	for _, line := range lines {
		r.ensure(5)
		r.pdf.SetXY(marginLeft+5, r.y)
		r.pdf.CellFormat(contentWidth-5, 5, line, "", 0, "L", false, 0, "")
		r.y += 5
	}
}

func (r *reportWriter) header(doc QuoteDocument) {
	title := doc.Title
	if title == "" {
		title = "Manufacturing Quote"
	}
	r.pdf.SetFont("Helvetica", "B", 16)
	r.pdf.SetXY(marginLeft, r.y)
	r.pdf.CellFormat(contentWidth, headerHeight, title, "", 0, "L", false, 0, "")
	r.y += headerHeight

	r.pdf.SetFont("Helvetica", "", 9)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.SetXY(marginLeft, r.y)
	r.pdf.CellFormat(contentWidth, 5, "Quote "+doc.Breakdown.QuoteID, "", 0, "L", false, 0, "")
	r.pdf.SetTextColor(0, 0, 0)
	r.y += 6

	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.SetLineWidth(0.5)
	r.pdf.Line(marginLeft, r.y, pageWidth-marginRight, r.y)
	r.y += 2

	if doc.Breakdown.RequiresManualQuote {
		r.y += 3
		r.pdf.SetFont("Helvetica", "B", 11)
		r.pdf.SetTextColor(200, 0, 0)
		r.pdf.SetXY(marginLeft, r.y)
		r.pdf.CellFormat(contentWidth, 7, "MANUAL REVIEW REQUIRED: "+doc.Breakdown.ManualQuoteReason, "", 0, "L", false, 0, "")
		r.pdf.SetTextColor(0, 0, 0)
		r.y += 8
	}
}

func (r *reportWriter) partSummary(g *model.GeometryData) {
	r.section("Part")
	bb := g.BoundingBox
	items := [][2]string{
		{"Name", orDash(g.Name)},
		{"Source", string(g.Source)},
		{"Dimensions", fmt.Sprintf("%.1f x %.1f x %.1f mm", bb.X, bb.Y, bb.Z)},
		{"Volume", fmt.Sprintf("%.2f cm3", g.Volume/1000)},
		{"Surface area", fmt.Sprintf("%.2f cm2", g.SurfaceArea/100)},
		{"Weight", fmt.Sprintf("%.3f kg", g.MaterialWeight)},
		{"Complexity", string(g.Complexity)},
		{"Process", fmt.Sprintf("%s (%.0f%% confidence)", g.RecommendedProcess, g.ProcessConfidence*100)},
	}
	if f := g.SheetMetalFeatures; f != nil {
		items = append(items,
			[2]string{"Gauge", fmt.Sprintf("%.2f mm", f.Thickness)},
			[2]string{"Flat blank", fmt.Sprintf("%.1f x %.1f mm, %d bends", f.Width, f.Length, f.BendCount)},
			[2]string{"Cutting", f.CuttingMethod},
		)
	}
	r.keyValues(items)
}

func (r *reportWriter) costBreakdown(doc QuoteDocument) {
	b := doc.Breakdown
	r.section(fmt.Sprintf("Price: %s x %d, %s", b.Material, b.Quantity, b.Process))

	rows := [][]string{
		{"Material", doc.money(b.MaterialCost)},
		{"Labor", doc.money(b.LaborCost)},
		{"Setup (amortized)", doc.money(b.SetupCost)},
		{"Tooling", doc.money(b.ToolingCost)},
		{"Finish " + orDash(b.Finish), doc.money(b.FinishCost)},
		{"Inspection", doc.money(b.InspectionCost)},
		{"Direct cost", doc.money(b.DirectCost)},
		{"Overhead", doc.money(b.Overhead)},
		{"Complexity adjustment", doc.money(b.ComplexityAdjustment)},
		{"Risk adjustment", doc.money(b.RiskAdjustment)},
		{"Margin", doc.money(b.Margin)},
		{"Subtotal", doc.money(b.Subtotal)},
		{"Volume discount", "-" + doc.money(b.VolumeDiscount)},
		{"Tolerance upcharge (" + b.Tolerance + ")", doc.money(b.ToleranceUpcharge)},
		{"Lead time factor (" + string(b.LeadTime) + ")", fmt.Sprintf("x %.2f", b.LeadTimeMultiplier)},
		{"Unit price", doc.money(b.UnitPrice)},
		{"Total price", doc.money(b.TotalPrice)},
	}
	if b.SheetsRequired > 0 {
		rows = append(rows, []string{"Sheets required", fmt.Sprintf("%d", b.SheetsRequired)})
	}
	r.table([]float64{110, 70}, []string{"Item (per unit)", "Amount"}, rows)

	lt := b.LeadTimeDays
	r.y += 2
	r.keyValues([][2]string{{"Lead time", fmt.Sprintf("%d working days (production %d, finishing %d, inspection %d)",
		lt.TotalDays, lt.ProductionDays, lt.FinishingDays, lt.InspectionDays)}})
}

func (r *reportWriter) matrix(doc QuoteDocument) {
	r.section("Quantity Pricing")
	rows := make([][]string, 0, len(doc.Matrix))
	for _, e := range doc.Matrix {
		rows = append(rows, []string{fmt.Sprintf("%d", e.Quantity), doc.money(e.PricePerUnit), doc.money(e.TotalPrice)})
	}
	r.table([]float64{40, 70, 70}, []string{"Quantity", "Per unit", "Total"}, rows)
}

func (r *reportWriter) comparison(doc QuoteDocument) {
	r.section("Process Comparison")
	rows := make([][]string, 0, len(doc.Comparison))
	for _, c := range doc.Comparison {
		name := string(c.Process)
		if c.Recommended {
			name += " *"
		}
		note := ""
		if c.RequiresManualQuote {
			note = "manual"
		}
		rows = append(rows, []string{name, doc.money(c.UnitPrice), doc.money(c.TotalPrice), fmt.Sprintf("%d d", c.LeadTimeDays), note})
	}
	r.table([]float64{50, 40, 40, 25, 25}, []string{"Process", "Per unit", "Total", "Lead", "Review"}, rows)
}

func (r *reportWriter) tolerance(f *model.ToleranceFeasibility) {
	r.section("Tolerance: " + string(f.ToleranceClass))
	verdict := "achievable"
	if !f.IsAchievable {
		verdict = "not achievable"
	}
	r.keyValues([][2]string{
		{"Verdict", verdict},
		{"Process", f.RequiredProcess},
		{"Capability", fmt.Sprintf("+/-%.3f mm", f.CapabilityIndex)},
		{"Additional cost", fmt.Sprintf("%.1f%%", f.AdditionalCostPercent)},
	})
	for _, c := range f.Concerns {
		r.paragraph("- " + c)
	}
}

func (r *reportWriter) manufacturability(g *model.GeometryData) {
	if len(g.DFMIssues) == 0 && len(g.SecondaryOps) == 0 {
		return
	}
	r.section("Manufacturability")
	for _, issue := range g.DFMIssues {
		r.paragraph(fmt.Sprintf("[%s] %s %s", strings.ToUpper(string(issue.Severity)), issue.Message, issue.Recommendation))
	}
	for _, op := range g.SecondaryOps {
		r.paragraph(fmt.Sprintf("Secondary: %s (%s)", op.Name, op.Reason))
	}
}

func (r *reportWriter) notes(b *model.PricingBreakdown) {
	if len(b.Notes) == 0 {
		return
	}
	r.section("Notes")
	for _, n := range b.Notes {
		r.paragraph("- " + n)
	}
}

func (r *reportWriter) footer() {
	r.pdf.SetFont("Helvetica", "I", 8)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.SetXY(marginLeft, pageHeight-marginBottom)
	r.pdf.CellFormat(contentWidth, 4, fmt.Sprintf("Generated by PartQuote - page %d", r.pdf.PageNo()), "", 0, "C", false, 0, "")
	r.pdf.SetTextColor(0, 0, 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderSheetPage draws one nested stock sheet on the current page.
func renderSheetPage(pdf *fpdf.Fpdf, sheet nesting.SheetLayout, sheetNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sheet %d: %s (%.0f x %.0f mm)", sheetNum, sheet.Sheet.Name, sheet.Sheet.Width, sheet.Sheet.Length)
	pdf.CellFormat(contentWidth, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Blanks: %d | Utilization: %.1f%%", len(sheet.Placements), sheet.Utilization()*100)
	pdf.CellFormat(contentWidth, 5, stats, "", 0, "L", false, 0, "")

	drawTop := marginTop + headerHeight + 10
	drawHeight := pageHeight - drawTop - marginBottom - 10
	if sheet.Sheet.Width <= 0 || sheet.Sheet.Length <= 0 {
		return
	}

	// Sheet length runs down the page.
	scale := math.Min(contentWidth/sheet.Sheet.Width, drawHeight/sheet.Sheet.Length)
	canvasW := sheet.Sheet.Width * scale
	canvasH := sheet.Sheet.Length * scale
	offsetX := marginLeft + (contentWidth-canvasW)/2
	offsetY := drawTop

	pdf.SetFillColor(200, 205, 210)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for i, p := range sheet.Placements {
		col := partColors[i%len(partColors)]
		w, l := p.Blank.Width, p.Blank.Length
		if p.Rotated {
			w, l = l, w
		}
		pw, ph := w*scale, l*scale
		px, py := offsetX+p.X*scale, offsetY+p.Y*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 15 && ph > 8 && p.Blank.ID != "" {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			label := p.Blank.ID
			if lw := pdf.GetStringWidth(label); lw < pw-2 {
				pdf.SetXY(px+(pw-lw)/2, py+ph/2-2)
				pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	widthLabel := fmt.Sprintf("%.0f mm", sheet.Sheet.Width)
	wl := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wl)/2, offsetY+canvasH+1)
	pdf.CellFormat(wl, 4, widthLabel, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
