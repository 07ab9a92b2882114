package process

import (
	"math"

	"github.com/piwi3910/partquote/internal/model"
)

// SheetEstimator derives bend, cut and forming statistics for parts routed
// to sheet metal. The counts are proxies from mesh density and shape ratios,
// not a flat-pattern unfold.
type SheetEstimator struct {
	th model.SheetMetalThresholds
}

// NewSheetEstimator creates an estimator over the given thresholds.
func NewSheetEstimator(th model.SheetMetalThresholds) *SheetEstimator {
	return &SheetEstimator{th: th}
}

// Estimate returns the sheet-metal features of a part. chars must come from
// the same part's classification; tol escalates complexity when tight.
func (e *SheetEstimator) Estimate(p Part, chars model.PartCharacteristics, tol model.ToleranceClass) *model.SheetMetalFeatures {
	sum := p.Summary
	dims := sum.BoundingBox.Sorted()
	t := sheetThickness(sum)
	if h := p.Hints.Sheet; h != nil && h.Thickness > 0 {
		t = h.Thickness
	}

	f := &model.SheetMetalFeatures{
		Thickness: t,
		Width:     dims[1],
		Length:    dims[2],
	}

	if chars.Flatness < e.th.FlatShare {
		f.BendCount = e.bendCount(sum.TriangleCount)
	}
	for i := 0; i < f.BendCount; i++ {
		angle := 90.0
		if sum.TriangleCount > e.th.VarietyTriangles && i%2 == 1 {
			angle = 135
		}
		f.BendAngles = append(f.BendAngles, angle)
	}
	f.CornerCount = 4 + 2*f.BendCount

	for _, h := range p.Features[model.KindHoles] {
		f.HoleCount++
		if h.Diameter > 0 && h.Diameter < t {
			f.SmallHoleCount++
		}
		f.CurvedCutLength += math.Pi * h.Diameter
	}
	f.CutLength = 2*(f.Width+f.Length) + f.CurvedCutLength
	f.FlatPatternArea = sum.SurfaceArea / 2
	if f.FlatPatternArea == 0 {
		f.FlatPatternArea = f.Width * f.Length
	}

	n := sum.TriangleCount
	f.Hems = bandCount(n, e.th.HemTriangles)
	f.Louvers = bandCount(n, e.th.LouverTriangles)
	f.Embossments = bandCount(n, e.th.EmbossTriangles)
	f.Lances = bandCount(n, e.th.LanceTriangles)

	f.CuttingMethod = e.cuttingMethod(f)
	f.BendingMethod = bendingMethod(f)
	f.PartType = e.partType(f, 1-chars.MaterialRemovalRatio)
	f.Complexity = complexity(f, tol)
	return f
}

func (e *SheetEstimator) bendCount(triangles int) int {
	for i, band := range e.th.BendBands {
		if triangles <= band && i < len(e.th.BendCounts) {
			return e.th.BendCounts[i]
		}
	}
	if len(e.th.BendCounts) == 0 {
		return 0
	}
	return e.th.BendCounts[len(e.th.BendCounts)-1]
}

// bandCount is one forming feature per full multiple of the threshold.
func bandCount(triangles, per int) int {
	if per <= 0 {
		return 0
	}
	return triangles / per
}

func (e *SheetEstimator) cuttingMethod(f *model.SheetMetalFeatures) string {
	switch {
	case f.Thickness > e.th.WaterjetThickness:
		return model.CutWaterjet
	case f.Thickness > e.th.PlasmaThickness:
		return model.CutPlasma
	case f.Thickness <= e.th.PunchThickness && f.HoleCount >= e.th.PunchMinHoles:
		if f.CurvedCutLength > e.th.PunchCurvedCutMax {
			return model.CutCombined
		}
		return model.CutTurretPunch
	default:
		return model.CutLaser
	}
}

func bendingMethod(f *model.SheetMetalFeatures) string {
	switch {
	case f.BendCount == 0:
		return model.BendNone
	case f.BendCount > 8:
		return model.BendPanel
	case distinctAngles(f.BendAngles) > 1:
		return model.BendBottoming
	default:
		return model.BendAir
	}
}

// partType classifies by bend count; efficiency is part volume over its
// bounding box, low for closed boxes.
func (e *SheetEstimator) partType(f *model.SheetMetalFeatures, efficiency float64) string {
	switch {
	case f.BendCount == 0:
		return model.PartFlatPattern
	case f.BendCount <= 2:
		return model.PartBracket
	case f.BendCount <= 4:
		if efficiency < e.th.EnclosureEfficiency {
			return model.PartEnclosure
		}
		return model.PartChannel
	default:
		return model.PartComplexFormed
	}
}

func complexity(f *model.SheetMetalFeatures, tol model.ToleranceClass) model.Complexity {
	level := 0
	switch {
	case f.BendCount > 4:
		level = 2
	case f.BendCount > 0 || f.HoleCount > 4:
		level = 1
	}
	multiSetup := f.PartType == model.PartEnclosure || distinctAngles(f.BendAngles) > 1
	if f.SmallHoleCount > 0 || tol == model.ToleranceTight || multiSetup {
		level++
	}
	return model.ComplexityFromLevel(level)
}

func distinctAngles(angles []float64) int {
	seen := map[float64]bool{}
	for _, a := range angles {
		seen[a] = true
	}
	return len(seen)
}
