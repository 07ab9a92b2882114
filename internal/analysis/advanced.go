package analysis

import (
	"math"

	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/model"
)

// Result bundles the per-triangle descriptors and the detected features.
type Result struct {
	Infos    []TriangleInfo
	Scene    *Scene
	Features model.FeatureMap
	Advanced model.AdvancedFeatures
}

// Analyze runs triangle analysis and feature detection over a triangle list.
func Analyze(tris []geometry.Triangle, th model.Thresholds) *Result {
	infos := AnalyzeTriangles(tris, th.Triangles)
	scene := NewScene(infos)
	fm := NewDetector(th).Detect(scene)
	return &Result{
		Infos:    infos,
		Scene:    scene,
		Features: fm,
		Advanced: Aggregate(fm, scene.Bounds, th.Validation),
	}
}

// Aggregate summarizes a feature map per kind.
func Aggregate(fm model.FeatureMap, bounds geometry.Bounds, v model.ValidationThresholds) model.AdvancedFeatures {
	adv := model.AdvancedFeatures{Counts: map[model.FeatureKind]int{}}
	for _, kind := range model.AllFeatureKinds {
		adv.Counts[kind] = fm.Count(kind)
	}

	adv.Holes = holeStats(fm[model.KindHoles], bounds, v.ThroughHoleClearance)
	adv.Pockets = pocketStats(fm[model.KindPockets])
	adv.ThreadCount = fm.Count(model.KindThreads)
	adv.ThinWallCount = fm.Count(model.KindThinWalls)
	adv.UndercutCount = fm.Count(model.KindUndercuts)
	for _, loc := range fm[model.KindThinWalls] {
		if loc.Thickness > 0 && (adv.MinWallThickness == 0 || loc.Thickness < adv.MinWallThickness) {
			adv.MinWallThickness = loc.Thickness
		}
	}
	return adv
}

func holeStats(holes []model.FeatureLocation, bounds geometry.Bounds, clearance float64) model.HoleStats {
	hs := model.HoleStats{Count: len(holes)}
	if len(holes) == 0 {
		return hs
	}
	size := bounds.Size()
	extents := [3]float64{size.X, size.Y, size.Z}
	hs.MinDiameter, hs.MinDepth = math.Inf(1), math.Inf(1)
	var diaSum, depthSum float64
	for _, h := range holes {
		diaSum += h.Diameter
		depthSum += h.Depth
		hs.MinDiameter = math.Min(hs.MinDiameter, h.Diameter)
		hs.MaxDiameter = math.Max(hs.MaxDiameter, h.Diameter)
		hs.MinDepth = math.Min(hs.MinDepth, h.Depth)
		hs.MaxDepth = math.Max(hs.MaxDepth, h.Depth)
		if h.Diameter > 0 {
			hs.MaxDepthRatio = math.Max(hs.MaxDepthRatio, h.Depth/h.Diameter)
		}
		if isThrough(h, extents, clearance) {
			hs.ThroughCount++
		}
	}
	n := float64(len(holes))
	hs.AvgDiameter = diaSum / n
	hs.AvgDepth = depthSum / n
	hs.DrillingMethod = DrillingMethod(hs.MaxDiameter, hs.MaxDepthRatio)
	return hs
}

// isThrough reports whether a hole spans the part along any axis its
// depth could have been measured on.
func isThrough(h model.FeatureLocation, extents [3]float64, clearance float64) bool {
	for _, extent := range extents {
		if extent > 0 && math.Abs(h.Depth-extent) <= clearance {
			return true
		}
	}
	return false
}

// DrillingMethod picks the hole-making strategy for the largest hole
// diameter and deepest depth/diameter ratio.
func DrillingMethod(maxDiameter, depthRatio float64) model.DrillingMethod {
	switch {
	case maxDiameter > 25:
		return model.DrillBoring
	case depthRatio > 10:
		return model.DrillGun
	case depthRatio > 4:
		return model.DrillPeck
	default:
		return model.DrillStandard
	}
}

func pocketStats(pockets []model.FeatureLocation) model.PocketStats {
	ps := model.PocketStats{Count: len(pockets)}
	if len(pockets) == 0 {
		return ps
	}
	ps.MinDepth = math.Inf(1)
	var sum float64
	for _, p := range pockets {
		sum += p.Depth
		ps.MinDepth = math.Min(ps.MinDepth, p.Depth)
		ps.MaxDepth = math.Max(ps.MaxDepth, p.Depth)
		if w := PocketWidth(p); w > 0 {
			ps.MaxDepthRatio = math.Max(ps.MaxDepthRatio, p.Depth/w)
		}
	}
	ps.AvgDepth = sum / float64(len(pockets))
	return ps
}

// PocketWidth is the narrower plan dimension of a pocket or slot.
func PocketWidth(loc model.FeatureLocation) float64 {
	return math.Min(loc.BoundingBox.X, loc.BoundingBox.Y)
}
