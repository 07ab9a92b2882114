// Package tolerance evaluates whether a part can hold a tolerance class and
// what that costs.
package tolerance

import (
	"fmt"
	"math"

	"github.com/piwi3910/partquote/internal/model"
)

// Capability returns the ± mm a tolerance class is quoted at under the
// built-in ladder. Unknown classes are treated as standard.
func Capability(class model.ToleranceClass) float64 {
	st, _ := model.DefaultThresholds().Tolerance.Step(class)
	return st.Capability
}

// Analyze evaluates one tolerance class against the built-in thresholds.
func Analyze(g *model.GeometryData, class model.ToleranceClass, material string) model.ToleranceFeasibility {
	return AnalyzeWith(g, class, material, model.DefaultThresholds().Tolerance)
}

// AnalyzeWith evaluates one tolerance class for the analyzed part. material
// is optional; an empty name applies no hardness scaling.
func AnalyzeWith(g *model.GeometryData, class model.ToleranceClass, material string, th model.ToleranceThresholds) model.ToleranceFeasibility {
	st, known := th.Step(class)
	if !known {
		class = model.ToleranceStandard
	}
	hardness := model.HardnessFactor(material)

	f := model.ToleranceFeasibility{
		ToleranceClass:  class,
		IsAchievable:    true,
		RequiredProcess: st.Process,
		CapabilityIndex: st.Capability,
		Concerns:        []string{},
		Recommendations: []string{},
	}

	var layers float64
	add := func(pct float64, concern, rec string) {
		layers += pct
		f.Concerns = append(f.Concerns, concern)
		if rec != "" {
			f.Recommendations = append(f.Recommendations, rec)
		}
	}

	switch g.Complexity {
	case model.ComplexityModerate:
		add(3, "moderate geometric complexity adds setups", "")
	case model.ComplexityComplex:
		add(8, "complex geometry needs multiple setups and fixturing", "relax tolerances on non-functional surfaces")
	}

	adv := g.AdvancedFeatures
	highThinWallRisk := (adv.MinWallThickness > 0 && adv.MinWallThickness < 1) || adv.ThinWallCount > 2
	switch {
	case highThinWallRisk:
		add(10, fmt.Sprintf("thin walls (min %.2f mm) deflect under cutting load", adv.MinWallThickness),
			"thicken walls to at least 1 mm or loosen tolerances on them")
	case adv.ThinWallCount > 0:
		add(5, "thin walls may deflect during finishing passes", "")
	}

	if n := adv.Pockets.Count; n > 0 {
		add(math.Min(12, 4*float64(n)), fmt.Sprintf("%d pocket(s) need long-reach tooling", n), "")
	}
	if adv.Holes.Count > 8 {
		add(5, fmt.Sprintf("%d holes form a position-dependent pattern", adv.Holes.Count),
			"dimension holes from a common datum")
	}

	switch size := g.BoundingBox.MaxDim(); {
	case size > 500:
		add(10, fmt.Sprintf("%.0f mm part length amplifies thermal growth", size), "")
	case size > 300:
		add(5, fmt.Sprintf("%.0f mm part length needs temperature-stable measurement", size), "")
	}

	if hardness != 1 && material != "" {
		f.Concerns = append(f.Concerns, fmt.Sprintf("%s scales machining effort by %.1fx", material, hardness))
	}

	f.AdditionalCostPercent = st.BasePct + layers*st.Factor*hardness

	minFeature := minFeatureSize(g)
	if class == model.ToleranceTight && minFeature > 0 && minFeature < 1 && highThinWallRisk {
		f.IsAchievable = false
		f.Concerns = append(f.Concerns,
			fmt.Sprintf("features under 1 mm (%.2f mm) with thin walls cannot hold ±%.3f mm", minFeature, st.Capability))
		f.Recommendations = append(f.Recommendations, "specify precision class or enlarge the smallest features")
	}

	f.FeatureTolerances = featureTolerances(g, st, f.IsAchievable)
	f.GDTCosts = gdtCosts(st)
	f.StackUp = stackUp(g, st, th)
	if f.StackUp != nil && f.StackUp.Critical {
		f.Concerns = append(f.Concerns,
			fmt.Sprintf("worst-case stack-up %.3f mm over %d dimensions", f.StackUp.WorstCase, f.StackUp.ChainLength))
		f.Recommendations = append(f.Recommendations, "use statistical tolerancing or a tighter class on the chain")
	}
	return f
}

// minFeatureSize is the smallest positive feature dimension known.
func minFeatureSize(g *model.GeometryData) float64 {
	min := g.BoundingBox.MinDim()
	consider := func(v float64) {
		if v > 0 && (min <= 0 || v < min) {
			min = v
		}
	}
	consider(g.AdvancedFeatures.Holes.MinDiameter)
	consider(g.AdvancedFeatures.MinWallThickness)
	return min
}

func stackUp(g *model.GeometryData, st model.ToleranceStep, th model.ToleranceThresholds) *model.StackUp {
	holes := g.AdvancedFeatures.Holes.Count
	var n int
	switch {
	case holes > 8:
		n = holes / 2
		if n < th.MinChain {
			n = th.MinChain
		}
		if th.MaxChain > 0 && n > th.MaxChain {
			n = th.MaxChain
		}
	case g.Complexity == model.ComplexityComplex:
		n = th.ComplexChain
	default:
		return nil
	}
	if n <= 0 {
		return nil
	}
	worst := st.Capability * float64(n)
	return &model.StackUp{
		ChainLength: n,
		WorstCase:   worst,
		RSS:         st.Capability * math.Sqrt(float64(n)),
		Critical:    worst > th.CriticalStack,
	}
}

// featureTolerances lists what each detected feature type holds under the
// ladder rung's process.
func featureTolerances(g *model.GeometryData, st model.ToleranceStep, achievable bool) []model.FeatureTolerance {
	rows := []struct {
		kind  model.FeatureKind
		label string
		scale float64
	}{
		{model.KindHoles, "hole diameter", 1},
		{model.KindPockets, "pocket depth", 2},
		{model.KindThinWalls, "wall thickness", 2},
		{model.KindThreads, "thread pitch diameter", 1.5},
		{model.KindBosses, "boss diameter", 1},
		{model.KindSlots, "slot width", 1.5},
		{model.KindCounterbores, "counterbore depth", 1.5},
	}
	out := []model.FeatureTolerance{{
		Feature:    "linear dimensions",
		Tolerance:  st.Capability,
		Achievable: achievable,
	}}
	for _, r := range rows {
		if !g.FeatureMap.Has(r.kind) && g.AdvancedFeatures.Counts[r.kind] == 0 {
			continue
		}
		ft := model.FeatureTolerance{
			Feature:    r.label,
			Tolerance:  st.Capability * r.scale,
			Achievable: achievable || r.scale > 1,
		}
		if r.scale > 1 {
			ft.Note = fmt.Sprintf("%s holds %.1fx the linear capability", r.label, r.scale)
		}
		out = append(out, ft)
	}
	return out
}

func gdtCosts(st model.ToleranceStep) []model.GDTCost {
	base := []struct {
		name string
		pct  float64
	}{
		{"flatness", 5},
		{"parallelism", 6},
		{"perpendicularity", 8},
		{"position", 10},
		{"concentricity", 15},
		{"profile of a surface", 20},
	}
	out := make([]model.GDTCost, 0, len(base))
	for _, b := range base {
		out = append(out, model.GDTCost{
			Characteristic: b.name,
			CostPercent:    b.pct * st.Factor,
		})
	}
	return out
}
