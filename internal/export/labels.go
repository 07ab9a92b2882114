package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/partquote/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo is the QR payload of one quote label. A scanner on the shop
// floor gets enough to find the quote and check the job without a lookup.
type LabelInfo struct {
	QuoteID   string        `json:"quote_id"`
	Part      string        `json:"part"`
	Process   model.Process `json:"process"`
	Material  string        `json:"material"`
	Finish    string        `json:"finish,omitempty"`
	Quantity  int           `json:"qty"`
	UnitPrice float64       `json:"unit_price"`
	LeadDays  int           `json:"lead_days"`
	Manual    bool          `json:"manual,omitempty"`
}

// labelSheet describes a sheet of adhesive labels in mm.
type labelSheet struct {
	page          string
	top, left     float64
	width, height float64
	cols, rows    int
}

// avery5160 is 3 x 10 labels of 66.7 x 25.4 mm on US Letter.
var avery5160 = labelSheet{page: "Letter", top: 12.7, left: 4.8, width: 66.7, height: 25.4, cols: 3, rows: 10}

// cell returns the top-left corner of label i and whether it starts a page.
func (s labelSheet) cell(i int) (x, y float64, newPage bool) {
	perPage := s.cols * s.rows
	pos := i % perPage
	x = s.left + float64(pos%s.cols)*s.width
	y = s.top + float64(pos/s.cols)*s.height
	return x, y, pos == 0
}

const (
	qrSize       = 20.0 // mm
	labelPadding = 2.0  // mm
	manualStripe = 1.5  // mm
)

// CollectLabelInfos extracts one label per priced result. Failed results
// are skipped.
func CollectLabelInfos(results []model.QuoteResult) []LabelInfo {
	var labels []LabelInfo
	for _, r := range results {
		b := r.Breakdown
		if b == nil {
			continue
		}
		name := r.Request.File
		if r.Geometry != nil && r.Geometry.Name != "" {
			name = r.Geometry.Name
		}
		labels = append(labels, LabelInfo{
			QuoteID:   b.QuoteID,
			Part:      name,
			Process:   b.Process,
			Material:  b.Material,
			Finish:    b.Finish,
			Quantity:  b.Quantity,
			UnitPrice: b.UnitPrice,
			LeadDays:  b.LeadTimeDays.TotalDays,
			Manual:    b.RequiresManualQuote,
		})
	}
	return labels
}

// ExportLabels writes one QR-coded label per priced quote on Avery 5160
// sheets, for tagging parts and travelers.
func ExportLabels(path string, results []model.QuoteResult) error {
	labels := CollectLabelInfos(results)
	if len(labels) == 0 {
		return ErrNoQuote
	}

	sheet := avery5160
	pdf := fpdf.New("P", "mm", sheet.page, "")
	pdf.SetAutoPageBreak(false, 0)
	for i, info := range labels {
		x, y, newPage := sheet.cell(i)
		if newPage {
			pdf.AddPage()
		}
		png, err := qrImage(info)
		if err != nil {
			return fmt.Errorf("label for %q: %w", info.Part, err)
		}
		renderLabel(pdf, sheet, x, y, fmt.Sprintf("qr-%d", i), png, info)
	}
	return pdf.OutputFileAndClose(path)
}

func qrImage(info LabelInfo) ([]byte, error) {
	payload, err := json.Marshal(info)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(payload), qrcode.Medium, 256)
}

// renderLabel puts the QR code on the left and four text lines beside it.
// Labels needing manual review get a red stripe along the left edge.
func renderLabel(pdf *fpdf.Fpdf, sheet labelSheet, x, y float64, imgName string, png []byte, info LabelInfo) {
	pdf.SetDrawColor(210, 210, 210)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, sheet.width, sheet.height, "D")

	if info.Manual {
		pdf.SetFillColor(200, 30, 30)
		pdf.Rect(x, y, manualStripe, sheet.height, "F")
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x+labelPadding+manualStripe, y+(sheet.height-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + qrSize + 2*labelPadding + manualStripe
	textW := sheet.width - (textX - x) - labelPadding

	lines := []struct {
		style string
		size  float64
		gray  int
		text  string
	}{
		{"B", 9, 0, info.Part},
		{"", 7, 0, fmt.Sprintf("%s, %s", info.Material, info.Process)},
		{"", 7, 0, fmt.Sprintf("%d pcs @ %.2f, %d days", info.Quantity, info.UnitPrice, info.LeadDays)},
		{"", 6, 110, info.QuoteID},
	}
	if info.Manual {
		lines[3].text = "MANUAL REVIEW " + info.QuoteID
	}

	ty := y + labelPadding
	for _, l := range lines {
		pdf.SetFont("Helvetica", l.style, l.size)
		pdf.SetTextColor(l.gray, l.gray, l.gray)
		h := l.size * 0.5
		pdf.SetXY(textX, ty)
		pdf.CellFormat(textW, h, truncate(pdf, l.text, textW), "", 0, "L", false, 0, "")
		ty += h + 0.8
	}
	pdf.SetTextColor(0, 0, 0)
}

func truncate(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}
