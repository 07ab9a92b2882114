// Package nesting packs rectangular sheet-metal blanks onto stock sheets.
package nesting

import (
	"sort"

	"github.com/piwi3910/partquote/internal/model"
)

// Blank is the rectangular envelope of one flat part.
type Blank struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

// Area returns the blank area without kerf.
func (b Blank) Area() float64 { return b.Width * b.Length }

// Placement is a blank positioned on a sheet.
type Placement struct {
	Blank   Blank   `json:"blank"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Rotated bool    `json:"rotated"`
}

// SheetLayout is one consumed stock sheet.
type SheetLayout struct {
	Sheet      model.StockSheet `json:"sheet"`
	Placements []Placement      `json:"placements"`
}

// Utilization is placed blank area over sheet area.
func (s SheetLayout) Utilization() float64 {
	area := s.Sheet.Area()
	if area == 0 {
		return 0
	}
	var used float64
	for _, p := range s.Placements {
		used += p.Blank.Area()
	}
	return used / area
}

// Result is the outcome of a nesting run.
type Result struct {
	Sheets   []SheetLayout `json:"sheets"`
	Unplaced []Blank       `json:"unplaced"`
}

// Utilization is the overall placed area over consumed sheet area.
func (r Result) Utilization() float64 {
	var used, total float64
	for _, s := range r.Sheets {
		total += s.Sheet.Area()
		for _, p := range s.Placements {
			used += p.Blank.Area()
		}
	}
	if total == 0 {
		return 0
	}
	return used / total
}

// Settings control the gaps between blanks and the sheet border.
type Settings struct {
	Kerf     float64 `json:"kerf"`      // mm between blanks
	EdgeTrim float64 `json:"edge_trim"` // mm unusable along each sheet edge
}

// Nester runs guillotine best-area-fit nesting.
type Nester struct {
	Settings Settings
}

// New creates a Nester.
func New(s Settings) *Nester {
	return &Nester{Settings: s}
}

// Nest places blanks on as few sheets as possible. Every stock size is
// available in unlimited supply; blanks that fit no stock size are returned
// as unplaced.
func (n *Nester) Nest(blanks []Blank, stocks []model.StockSheet) Result {
	var res Result
	var remaining []Blank
	for _, b := range blanks {
		if n.fitsAny(b, stocks) {
			remaining = append(remaining, b)
		} else {
			res.Unplaced = append(res.Unplaced, b)
		}
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Area() > remaining[j].Area()
	})

	for len(remaining) > 0 {
		idx := n.selectBestStock(stocks, remaining)
		if idx < 0 {
			break
		}
		sheet, unplaced := n.packSheetBestStrategy(stocks[idx], remaining)
		if len(sheet.Placements) == 0 {
			break
		}
		res.Sheets = append(res.Sheets, sheet)
		remaining = unplaced
	}
	res.Unplaced = append(res.Unplaced, remaining...)
	return res
}

// PartsPerSheet fills one sheet with identical blanks and returns how many
// fit and the resulting utilization.
func (n *Nester) PartsPerSheet(width, length float64, sheet model.StockSheet) (int, float64) {
	if width <= 0 || length <= 0 || sheet.Area() <= 0 {
		return 0, 0
	}
	perBlank := (width + n.Settings.Kerf) * (length + n.Settings.Kerf)
	limit := int(sheet.Area()/perBlank) + 1
	blanks := make([]Blank, limit)
	for i := range blanks {
		blanks[i] = Blank{Width: width, Length: length}
	}
	layout, _ := n.packSheetBestStrategy(sheet, blanks)
	return len(layout.Placements), layout.Utilization()
}

// rotationStrategy controls how blanks are turned during packing.
type rotationStrategy int

const (
	rotBestFit    rotationStrategy = iota // compare both orientations, take the tighter fit
	rotAllNormal                          // normal first, rotated as fallback
	rotAllRotated                         // rotated first, normal as fallback
)

// packSheetBestStrategy packs with every rotation strategy and keeps the
// layout that places the most blanks, then the highest utilization.
func (n *Nester) packSheetBestStrategy(stock model.StockSheet, blanks []Blank) (SheetLayout, []Blank) {
	var best SheetLayout
	var bestUnplaced []Blank
	bestPlaced := -1
	for _, strat := range []rotationStrategy{rotBestFit, rotAllNormal, rotAllRotated} {
		sheet, unplaced := n.packSheet(stock, blanks, strat)
		placed := len(sheet.Placements)
		if placed > bestPlaced || (placed == bestPlaced && placed > 0 && sheet.Utilization() > best.Utilization()) {
			bestPlaced = placed
			best, bestUnplaced = sheet, unplaced
		}
	}
	return best, bestUnplaced
}

func (n *Nester) packSheet(stock model.StockSheet, blanks []Blank, strategy rotationStrategy) (SheetLayout, []Blank) {
	sheet := SheetLayout{Sheet: stock}
	var unplaced []Blank
	packer := newGuillotinePacker(n.usable(stock), n.Settings.Kerf)

	place := func(b Blank, rotated bool) bool {
		w, h := b.Width, b.Length
		if rotated {
			w, h = h, w
		}
		ok, x, y := packer.insert(w, h)
		if ok {
			sheet.Placements = append(sheet.Placements, Placement{Blank: b, X: x, Y: y, Rotated: rotated})
		}
		return ok
	}

	for _, b := range blanks {
		square := b.Width == b.Length
		var placed bool
		switch strategy {
		case rotAllRotated:
			placed = (!square && place(b, true)) || place(b, false)
		case rotBestFit:
			normal := packer.bestFit(b.Width, b.Length)
			turned := packer.bestFit(b.Length, b.Width)
			preferRotated := !square && turned >= 0 && (normal < 0 || turned < normal)
			if preferRotated {
				placed = place(b, true) || place(b, false)
			} else {
				placed = place(b, false) || (!square && place(b, true))
			}
		default:
			placed = place(b, false) || (!square && place(b, true))
		}
		if !placed {
			unplaced = append(unplaced, b)
		}
	}
	return sheet, unplaced
}

// usable is the sheet minus edge trim.
func (n *Nester) usable(stock model.StockSheet) rect {
	t := n.Settings.EdgeTrim
	return rect{x: t, y: t, w: stock.Width - 2*t, h: stock.Length - 2*t}
}

// selectBestStock trial-packs every stock size that fits the largest
// remaining blank and picks the one with the highest utilization.
func (n *Nester) selectBestStock(stocks []model.StockSheet, blanks []Blank) int {
	if len(stocks) == 0 || len(blanks) == 0 {
		return -1
	}
	largest := blanks[0]
	for _, b := range blanks[1:] {
		if b.Area() > largest.Area() {
			largest = b
		}
	}

	var candidates []int
	for i, s := range stocks {
		if n.fits(largest, s) {
			candidates = append(candidates, i)
		}
	}
	switch len(candidates) {
	case 0:
		return -1
	case 1:
		return candidates[0]
	}

	type stockKey struct{ w, l float64 }
	seen := map[stockKey]bool{}
	best, bestScore := candidates[0], -1.0
	for _, idx := range candidates {
		key := stockKey{stocks[idx].Width, stocks[idx].Length}
		if seen[key] {
			continue
		}
		seen[key] = true
		sheet, _ := n.packSheet(stocks[idx], blanks, rotBestFit)
		if u := sheet.Utilization(); u > bestScore {
			best, bestScore = idx, u
		}
	}
	return best
}

func (n *Nester) fits(b Blank, s model.StockSheet) bool {
	u := n.usable(s)
	kerf := n.Settings.Kerf
	return (b.Width+kerf <= u.w+eps && b.Length+kerf <= u.h+eps) ||
		(b.Length+kerf <= u.w+eps && b.Width+kerf <= u.h+eps)
}

func (n *Nester) fitsAny(b Blank, stocks []model.StockSheet) bool {
	for _, s := range stocks {
		if n.fits(b, s) {
			return true
		}
	}
	return false
}
