package model

import "math"

// SheetPurchase holds the result of a sheet purchasing calculation for a
// batch of identical sheet-metal blanks.
type SheetPurchase struct {
	BlankArea         float64 `json:"blank_area"`          // area of one blank including kerf (mm²)
	SheetArea         float64 `json:"sheet_area"`          // area of one sheet (mm²)
	PartsPerSheet     int     `json:"parts_per_sheet"`     // blanks nested on one sheet
	Utilization       float64 `json:"utilization"`         // nested blank area / sheet area
	SheetsNeededExact float64 `json:"sheets_needed_exact"` // exact fractional number of sheets
	SheetsRequired    int     `json:"sheets_required"`     // ceiling of exact, including waste
	WastePercent      float64 `json:"waste_percent"`       // waste factor applied (e.g. 10 for 10%)
}

// CalculateSheetPurchase computes how many sheets a batch consumes given how
// many blanks one sheet holds. When the nesting result is unknown
// (partsPerSheet == 0) it falls back to an area ratio.
func CalculateSheetPurchase(blankW, blankL, kerfWidth float64, sheet StockSheet, partsPerSheet, quantity int, wastePercent float64) SheetPurchase {
	blankArea := (blankW + kerfWidth) * (blankL + kerfWidth)
	sheetArea := sheet.Area()
	if sheetArea <= 0 || blankArea <= 0 || quantity <= 0 {
		return SheetPurchase{BlankArea: blankArea, SheetArea: sheetArea, WastePercent: wastePercent}
	}

	if partsPerSheet <= 0 {
		partsPerSheet = int(math.Floor(sheetArea / blankArea))
	}
	if partsPerSheet <= 0 {
		// Blank larger than the sheet: one sheet per part at best.
		partsPerSheet = 1
	}

	exact := float64(quantity) / float64(partsPerSheet)
	wasteFactor := 1.0 + (wastePercent / 100.0)
	required := int(math.Ceil(exact * wasteFactor))
	if min := int(math.Ceil(exact)); required < min {
		required = min
	}

	return SheetPurchase{
		BlankArea:         blankArea,
		SheetArea:         sheetArea,
		PartsPerSheet:     partsPerSheet,
		Utilization:       math.Min(1, float64(partsPerSheet)*blankArea/sheetArea),
		SheetsNeededExact: exact,
		SheetsRequired:    required,
		WastePercent:      wastePercent,
	}
}
