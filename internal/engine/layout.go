package engine

import (
	"fmt"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/piwi3910/partquote/internal/nesting"
)

// maxLayoutBlanks caps the blanks nested for a quote layout.
const maxLayoutBlanks = 1000

// SheetLayout nests qty developed blanks of a sheet-metal part onto the
// catalog stock. ok is false for parts without a sheet-metal estimate.
func (e *Engine) SheetLayout(g *model.GeometryData, qty int) (result *nesting.Result, ok bool) {
	if g == nil || g.SheetMetalFeatures == nil || len(e.catalog.Sheets) == 0 {
		return nil, false
	}
	f := g.SheetMetalFeatures
	w, l := f.Width, f.Length
	if w > 0 && f.FlatPatternArea > w*l {
		l = f.FlatPatternArea / w
	}
	if w <= 0 || l <= 0 {
		return nil, false
	}
	qty = min(max(qty, 1), maxLayoutBlanks)

	blanks := make([]nesting.Blank, qty)
	for i := range blanks {
		blanks[i] = nesting.Blank{ID: fmt.Sprintf("P%d", i+1), Width: w, Length: l}
	}
	n := nesting.New(nesting.Settings{Kerf: e.cfg.NestingKerf, EdgeTrim: e.cfg.NestingTrim})
	r := n.Nest(blanks, e.catalog.Sheets)
	return &r, true
}
