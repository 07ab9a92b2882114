// Package process selects a manufacturing process for an analyzed part and
// estimates sheet-metal specifics when sheet metal wins.
package process

import (
	"fmt"
	"math"

	"github.com/piwi3910/partquote/internal/analysis"
	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// SheetHint is the sheet-metal verdict of a remote extraction service.
type SheetHint struct {
	IsSheetMetal bool
	Thickness    float64
}

// Hints carry request context the geometry alone cannot provide.
type Hints struct {
	Material *model.Material
	Quantity int
	Sheet    *SheetHint
}

// Part is everything the classifier looks at. Infos may be empty for
// geometry that came from a remote summary.
type Part struct {
	Summary         model.GeometrySummary
	Infos           []analysis.TriangleInfo
	Features        model.FeatureMap
	Advanced        model.AdvancedFeatures
	WallThicknesses []float64
	Hints           Hints
}

// PartFromAnalysis assembles a Part from a mesh summary and its analysis.
func PartFromAnalysis(sum model.GeometrySummary, res *analysis.Result, hints Hints) Part {
	p := Part{Summary: sum, Hints: hints}
	if res != nil {
		p.Infos = res.Infos
		p.Features = res.Features
		p.Advanced = res.Advanced
		if res.Scene != nil {
			p.WallThicknesses = res.Scene.WallThicknesses()
		}
	}
	return p
}

// Decision is the classifier output.
type Decision struct {
	Recommendation  model.ProcessRecommendation
	Characteristics model.PartCharacteristics
}

// Classifier runs the rule cascade. It is stateless and safe for concurrent
// use.
type Classifier struct {
	th model.ClassifierThresholds
}

// NewClassifier creates a classifier over the given thresholds.
func NewClassifier(th model.ClassifierThresholds) *Classifier {
	return &Classifier{th: th}
}

// Classify scores the part for every process and walks the decision cascade.
// The result depends only on its input.
func (c *Classifier) Classify(p Part) Decision {
	bb := p.Summary.BoundingBox
	dims := bb.Sorted()
	chars := c.characteristics(p)
	d := Decision{Characteristics: chars}

	decide := func(proc model.Process, conf float64, why ...string) Decision {
		d.Recommendation = model.ProcessRecommendation{
			Process:    proc,
			Confidence: clamp(conf, 0, 1),
			Reasoning:  why,
		}
		return d
	}

	if dims[0] < c.th.MinFeatureSize {
		return decide(model.ProcessManualQuote, 1,
			fmt.Sprintf("smallest dimension %.2f mm is below the %.2f mm automation limit", dims[0], c.th.MinFeatureSize))
	}

	if h := p.Hints.Sheet; h != nil && h.IsSheetMetal {
		why := "extraction service identified a sheet-metal body"
		if h.Thickness > 0 {
			why = fmt.Sprintf("%s (%.2f mm gauge)", why, h.Thickness)
		}
		return decide(model.ProcessSheetMetal, c.th.RemoteHintConfidence, why)
	}

	if chars.TurningScore > c.th.TurningScore {
		conf := math.Min(0.95, 0.6+(chars.TurningScore-c.th.TurningScore)/100)
		return decide(model.ProcessTurning, conf,
			fmt.Sprintf("turning score %.0f: rotationally symmetric about its long axis", chars.TurningScore))
	}

	for i, band := range c.th.SheetScoreBands {
		if chars.SheetMetalScore >= band && i < len(c.th.SheetConfidence) {
			return decide(model.ProcessSheetMetal, c.th.SheetConfidence[i],
				fmt.Sprintf("sheet-metal score %.0f (band %.0f)", chars.SheetMetalScore, band),
				fmt.Sprintf("uniform %.2f mm gauge", sheetThickness(p.Summary)))
		}
	}

	if m := p.Hints.Material; m != nil && m.IsPlastic() &&
		p.Hints.Quantity >= c.th.MoldingQuantity && dims[2] <= c.th.MoldingMaxDimension {
		return decide(model.ProcessInjectionMolding, 0.7,
			fmt.Sprintf("%s at quantity %d amortizes a mold", m.Name, p.Hints.Quantity))
	}

	if chars.MillingScore > c.th.MillingScore {
		conf := 0.75 + 0.1*chars.ComplexityScore + 0.1*chars.VolumeDistribution
		return decide(model.ProcessMilling, math.Min(0.95, conf),
			fmt.Sprintf("milling score %.0f: prismatic body with machinable features", chars.MillingScore))
	}

	if dims[2] > c.th.MaxEnvelope {
		return decide(model.ProcessManualQuote, 1,
			fmt.Sprintf("largest dimension %.0f mm exceeds the %.0f mm machine envelope", dims[2], c.th.MaxEnvelope))
	}
	if aspect := dims[2] / dims[0]; aspect > c.th.MaxAspect {
		return decide(model.ProcessManualQuote, 1,
			fmt.Sprintf("aspect ratio %.0f exceeds %.0f", aspect, c.th.MaxAspect))
	}

	best, score := model.ProcessMilling, chars.MillingScore
	if chars.SheetMetalScore > score {
		best, score = model.ProcessSheetMetal, chars.SheetMetalScore
	}
	if chars.TurningScore > score {
		best, score = model.ProcessTurning, chars.TurningScore
	}
	return decide(best, c.th.TieBreakConfidence,
		fmt.Sprintf("no process passed its threshold; %s has the highest raw score (%.0f)", best, score))
}

func (c *Classifier) characteristics(p Part) model.PartCharacteristics {
	sum := p.Summary
	dims := sum.BoundingBox.Sorted()
	ch := model.PartCharacteristics{
		SurfaceToVolume: sum.SurfaceToVolume(),
		ComplexityScore: float64(sum.Complexity.Level()) / 2,
	}
	if dims[2] > 0 {
		ch.DimensionBalance = dims[0] / dims[2]
	}
	if bv := sum.BoundingBox.Volume(); bv > 0 {
		ch.MaterialRemovalRatio = clamp(1-sum.Volume/bv, 0, 1)
	}

	ch.VolumeDistribution = volumeDistribution(p.Infos, sum.BoundingBox)
	ch.Planarity = planarity(p.Infos)
	ch.EdgeSharpness = edgeSharpness(p.Infos)
	ch.WallThicknessConsistency = consistency(p.WallThicknesses)
	ch.Flatness = flatness(p.Infos, sum.BoundingBox)

	share, rotational := c.rotational(p.Infos, sum.BoundingBox)
	ch.IsRotational = rotational
	ch.TurningScore = turningScore(rotational, share, p.Features)
	ch.SheetMetalScore = c.sheetScore(p, ch)
	ch.MillingScore = c.millingScore(p, ch)
	return ch
}

// sheetScore is the 0-100 sheet-metal base score.
func (c *Classifier) sheetScore(p Part, ch model.PartCharacteristics) float64 {
	sum := p.Summary
	dims := sum.BoundingBox.Sorted()
	t := sheetThickness(sum)
	var score float64

	switch {
	case t >= c.th.SheetThicknessMin && t <= c.th.SheetThicknessMax:
		score += 30
	case t > 0 && t <= c.th.SheetThicknessLimit:
		score += 15
	}

	if t > 0 {
		switch aspect := dims[1] / t; {
		case aspect >= 50:
			score += 20
		case aspect >= 20:
			score += 12
		case aspect >= 10:
			score += 5
		}
	}

	switch sv := ch.SurfaceToVolume; {
	case sv >= 0.5:
		score += 20
	case sv >= 0.25:
		score += 12
	case sv >= 0.1:
		score += 5
	}

	switch {
	case ch.Flatness >= 0.8:
		score += 15
	case ch.Flatness >= 0.6:
		score += 8
	}

	switch eff := 1 - ch.MaterialRemovalRatio; {
	case eff >= 0.8:
		score += 15
	case eff >= 0.5:
		score += 8
	}

	var penalty float64
	for _, k := range []model.FeatureKind{model.KindPockets, model.KindThreads, model.KindBosses} {
		if p.Features.Has(k) {
			penalty += 10
		}
	}
	score -= math.Min(penalty, 30)
	if ch.IsRotational {
		score -= 25
	}
	if sum.Complexity == model.ComplexityComplex {
		score -= 10
	}
	return clamp(score, 0, 100)
}

// millingScore blends prismatic shape with the milling feature score.
func (c *Classifier) millingScore(p Part, ch model.PartCharacteristics) float64 {
	prismatic := 1.0
	if c.th.PrismaticBalance > 0 {
		prismatic = math.Min(1, ch.DimensionBalance/c.th.PrismaticBalance)
	}

	var features float64
	if p.Features.Has(model.KindPockets) || p.Features.Has(model.KindSlots) {
		features += 20
	}
	if p.Features.Has(model.KindHoles) {
		features += 20
	}
	if p.Features.Has(model.KindBosses) {
		features += 10
	}
	if p.Features.Has(model.KindFillets) {
		features += 10
	}
	if p.Features.Has(model.KindComplexSurfaces) {
		features += 10
	}
	features += 20 * ch.Planarity
	return 50*prismatic + 0.5*features
}

func turningScore(rotational bool, radialShare float64, fm model.FeatureMap) float64 {
	var score float64
	if rotational {
		score += 40
	}
	score += 40 * radialShare
	score += math.Min(20, 10*float64(fm.Count(model.KindThreads)))
	return math.Min(100, score)
}

// rotational looks for an axis whose perpendicular dimensions match and
// whose side faces point radially. It returns the best radial area share and
// whether the part counts as a body of revolution.
func (c *Classifier) rotational(infos []analysis.TriangleInfo, bb model.BoundingBox) (float64, bool) {
	if len(infos) == 0 {
		return 0, false
	}
	dims := bb.Dims()
	center := geometry.FromPoint(bb.Center())

	var total float64
	for _, info := range infos {
		total += info.Area
	}
	if total <= 0 {
		return 0, false
	}

	var bestShare float64
	var best bool
	for axis := 0; axis < 3; axis++ {
		u, v := dims[(axis+1)%3], dims[(axis+2)%3]
		if u <= 0 || v <= 0 || math.Abs(u-v)/math.Max(u, v) > c.th.RotationalDimTol {
			continue
		}
		a := geometry.AxisVec(axis)
		bins := make([]bool, c.th.RotationalBins)
		var aligned float64
		var radii []float64
		for _, info := range infos {
			if math.Abs(r3.Dot(info.Normal, a)) >= 0.15 {
				continue
			}
			off := geometry.RejectAxis(r3.Sub(info.Centroid, center), axis)
			r := r3.Norm(off)
			if r == 0 {
				continue
			}
			if math.Abs(r3.Dot(info.Normal, r3.Scale(1/r, off))) <= c.th.RotationalAlignment {
				continue
			}
			aligned += info.Area
			radii = append(radii, r)
			ang := math.Atan2(r3.Dot(off, geometry.AxisVec((axis+2)%3)), r3.Dot(off, geometry.AxisVec((axis+1)%3)))
			bin := int((ang + math.Pi) / (2 * math.Pi) * float64(len(bins)))
			if bin < 0 || bin >= len(bins) {
				continue
			}
			bins[bin] = true
		}
		share := aligned / total
		if share <= bestShare {
			continue
		}
		bestShare = share
		occupied := 0
		for _, b := range bins {
			if b {
				occupied++
			}
		}
		best = share >= c.th.RotationalAreaShare &&
			occupied >= c.th.RotationalMinBins &&
			consistency(radii) >= 1-c.th.RotationalMaxCV
	}
	return bestShare, best
}

// sheetThickness estimates the gauge as the smaller of the thinnest bounding
// dimension and 2V/A, which recovers the wall of a formed shell.
func sheetThickness(sum model.GeometrySummary) float64 {
	t := sum.BoundingBox.MinDim()
	if sum.Volume > 0 && sum.SurfaceArea > 0 {
		t = math.Min(t, 2*sum.Volume/sum.SurfaceArea)
	}
	return t
}

// flatness is the area share of faces perpendicular to the thinnest axis.
// Without triangles it falls back to the bounding box proportions.
func flatness(infos []analysis.TriangleInfo, bb model.BoundingBox) float64 {
	dims := bb.Dims()
	axis := 0
	for i := 1; i < 3; i++ {
		if dims[i] < dims[axis] {
			axis = i
		}
	}
	if len(infos) == 0 {
		if s := bb.Sorted(); s[2] > 0 && s[0]/s[2] < 0.05 {
			return 1
		}
		return 0
	}
	var flat, total float64
	for _, info := range infos {
		total += info.Area
		if math.Abs(geometry.Component(info.Normal, axis)) > 0.95 {
			flat += info.Area
		}
	}
	if total == 0 {
		return 0
	}
	return flat / total
}

// planarity is the area share of axis-aligned faces.
func planarity(infos []analysis.TriangleInfo) float64 {
	if len(infos) == 0 {
		return 0.5
	}
	var flat, total float64
	for _, info := range infos {
		total += info.Area
		n := info.Normal
		if math.Max(math.Abs(n.X), math.Max(math.Abs(n.Y), math.Abs(n.Z))) > 0.95 {
			flat += info.Area
		}
	}
	if total == 0 {
		return 0
	}
	return flat / total
}

// volumeDistribution is 1 when surface area is centered in the bounding box
// and falls toward 0 as it gathers at one end.
func volumeDistribution(infos []analysis.TriangleInfo, bb model.BoundingBox) float64 {
	half := r3.Norm(r3.Vec{X: bb.X, Y: bb.Y, Z: bb.Z}) / 2
	if len(infos) == 0 || half == 0 {
		return 1
	}
	var acc r3.Vec
	var total float64
	for _, info := range infos {
		acc = r3.Add(acc, r3.Scale(info.Area, info.Centroid))
		total += info.Area
	}
	if total == 0 {
		return 1
	}
	off := r3.Norm(r3.Sub(r3.Scale(1/total, acc), geometry.FromPoint(bb.Center())))
	return clamp(1-off/half, 0, 1)
}

func edgeSharpness(infos []analysis.TriangleInfo) float64 {
	if len(infos) == 0 {
		return 0
	}
	curv := make([]float64, len(infos))
	for i, info := range infos {
		curv[i] = info.Curvature
	}
	return clamp(stat.Mean(curv, nil), 0, 1)
}

// consistency is 1 - coefficient of variation, clamped to [0,1].
func consistency(xs []float64) float64 {
	if len(xs) < 2 {
		return 1
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if mean == 0 {
		return 0
	}
	return clamp(1-std/mean, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
