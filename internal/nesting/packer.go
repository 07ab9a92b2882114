package nesting

// guillotinePacker keeps the free rectangles of one sheet and splits them on
// each insertion.
type guillotinePacker struct {
	freeRects []rect
	kerf      float64
}

type rect struct {
	x, y, w, h float64
}

const eps = 0.001

func newGuillotinePacker(free rect, kerf float64) *guillotinePacker {
	return &guillotinePacker{
		freeRects: []rect{free},
		kerf:      kerf,
	}
}

// insert places a w x h blank with the Best Area Fit heuristic and returns
// its position.
func (gp *guillotinePacker) insert(w, h float64) (bool, float64, float64) {
	idx := gp.bestRect(w, h)
	if idx < 0 {
		return false, 0, 0
	}
	chosen := gp.freeRects[idx]
	gp.splitAroundPlacement(rect{x: chosen.x, y: chosen.y, w: w + gp.kerf, h: h + gp.kerf})
	return true, chosen.x, chosen.y
}

// bestFit returns the leftover area of the tightest free rect for a w x h
// blank without placing it, or -1 when nothing fits.
func (gp *guillotinePacker) bestFit(w, h float64) float64 {
	idx := gp.bestRect(w, h)
	if idx < 0 {
		return -1
	}
	r := gp.freeRects[idx]
	return r.w*r.h - w*h
}

func (gp *guillotinePacker) bestRect(w, h float64) int {
	wk, hk := w+gp.kerf, h+gp.kerf
	best := -1
	var bestFit float64
	for i, r := range gp.freeRects {
		if wk > r.w+eps || hk > r.h+eps {
			continue
		}
		fit := r.w*r.h - w*h
		if best < 0 || fit < bestFit {
			best, bestFit = i, fit
		}
	}
	return best
}

// splitAroundPlacement replaces every free rect the placement overlaps with
// its maximal leftover strips, then drops rects contained in others.
func (gp *guillotinePacker) splitAroundPlacement(placed rect) {
	var next []rect
	for _, r := range gp.freeRects {
		if !rectsOverlap(r, placed) {
			next = append(next, r)
			continue
		}
		if placed.x > r.x+eps {
			next = append(next, rect{x: r.x, y: r.y, w: placed.x - r.x, h: r.h})
		}
		if placed.x+placed.w < r.x+r.w-eps {
			next = append(next, rect{x: placed.x + placed.w, y: r.y, w: r.x + r.w - (placed.x + placed.w), h: r.h})
		}
		if placed.y > r.y+eps {
			next = append(next, rect{x: r.x, y: r.y, w: r.w, h: placed.y - r.y})
		}
		if placed.y+placed.h < r.y+r.h-eps {
			next = append(next, rect{x: r.x, y: placed.y + placed.h, w: r.w, h: r.y + r.h - (placed.y + placed.h)})
		}
	}
	gp.freeRects = pruneContained(next)
}

func rectsOverlap(a, b rect) bool {
	return a.x < b.x+b.w-eps && a.x+a.w > b.x+eps &&
		a.y < b.y+b.h-eps && a.y+a.h > b.y+eps
}

// pruneContained removes rects contained in another. Of two equal rects the
// first is kept.
func pruneContained(rects []rect) []rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !containsRect(b, a) {
				continue
			}
			if containsRect(a, b) && i < j {
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

func containsRect(outer, inner rect) bool {
	return outer.x <= inner.x+eps && outer.y <= inner.y+eps &&
		outer.x+outer.w >= inner.x+inner.w-eps &&
		outer.y+outer.h >= inner.y+inner.h-eps
}
