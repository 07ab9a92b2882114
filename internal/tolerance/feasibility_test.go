package tolerance

import (
	"testing"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func part(complexity model.Complexity, size float64) *model.GeometryData {
	return &model.GeometryData{
		GeometrySummary: model.GeometrySummary{
			Complexity:  complexity,
			BoundingBox: model.NewBoundingBox(model.Point3D{}, model.Point3D{X: size, Y: size, Z: size}),
		},
		FeatureMap: model.FeatureMap{},
	}
}

func TestAdditionalCostIsMonotone(t *testing.T) {
	parts := map[string]*model.GeometryData{
		"simple":  part(model.ComplexitySimple, 50),
		"complex": part(model.ComplexityComplex, 600),
	}
	thin := part(model.ComplexityModerate, 100)
	thin.AdvancedFeatures.ThinWallCount = 3
	thin.AdvancedFeatures.MinWallThickness = 0.8
	thin.AdvancedFeatures.Pockets.Count = 2
	parts["thin"] = thin

	for name, g := range parts {
		for _, mat := range []string{"", "Titanium Ti-6Al-4V", "Brass C360"} {
			std := Analyze(g, model.ToleranceStandard, mat).AdditionalCostPercent
			prec := Analyze(g, model.TolerancePrecision, mat).AdditionalCostPercent
			tight := Analyze(g, model.ToleranceTight, mat).AdditionalCostPercent
			assert.GreaterOrEqual(t, prec, std, "%s/%s", name, mat)
			assert.GreaterOrEqual(t, tight, prec, "%s/%s", name, mat)
		}
	}
}

func TestStandardSimplePartHasNoAddOn(t *testing.T) {
	f := Analyze(part(model.ComplexitySimple, 50), model.ToleranceStandard, "Aluminum 6061-T6")
	assert.True(t, f.IsAchievable)
	assert.Equal(t, "standard-cnc", f.RequiredProcess)
	assert.InDelta(t, 0.05, f.CapabilityIndex, 1e-12)
	assert.InDelta(t, 0, f.AdditionalCostPercent, 1e-12)
	assert.Nil(t, f.StackUp)
	require.NotEmpty(t, f.FeatureTolerances)
	assert.Equal(t, "linear dimensions", f.FeatureTolerances[0].Feature)
}

func TestHardnessScalesLayers(t *testing.T) {
	g := part(model.ComplexityComplex, 50)
	alu := Analyze(g, model.TolerancePrecision, "").AdditionalCostPercent
	ti := Analyze(g, model.TolerancePrecision, "Titanium Ti-6Al-4V").AdditionalCostPercent

	// 15 base + 8 complexity * 1.5 state factor * hardness
	assert.InDelta(t, 15+8*1.5, alu, 1e-9)
	assert.InDelta(t, 15+8*1.5*1.5, ti, 1e-9)
}

func TestTightUnachievableWithSmallFeaturesAndThinWalls(t *testing.T) {
	g := part(model.ComplexityModerate, 40)
	g.AdvancedFeatures.MinWallThickness = 0.6
	g.AdvancedFeatures.ThinWallCount = 1

	tight := Analyze(g, model.ToleranceTight, "")
	assert.False(t, tight.IsAchievable)
	assert.Equal(t, "cnc-grinding-edm", tight.RequiredProcess)
	assert.NotEmpty(t, tight.Recommendations)

	assert.True(t, Analyze(g, model.TolerancePrecision, "").IsAchievable)

	g.AdvancedFeatures.MinWallThickness = 2
	g.AdvancedFeatures.ThinWallCount = 1
	assert.True(t, Analyze(g, model.ToleranceTight, "").IsAchievable)
}

func TestStackUp(t *testing.T) {
	g := part(model.ComplexityModerate, 100)
	g.AdvancedFeatures.Holes.Count = 12

	f := Analyze(g, model.ToleranceStandard, "")
	require.NotNil(t, f.StackUp)
	assert.Equal(t, 6, f.StackUp.ChainLength)
	assert.InDelta(t, 0.3, f.StackUp.WorstCase, 1e-12)
	assert.InDelta(t, 0.05*2.449489742783178, f.StackUp.RSS, 1e-9)
	assert.True(t, f.StackUp.Critical)

	f = Analyze(g, model.ToleranceTight, "")
	require.NotNil(t, f.StackUp)
	assert.False(t, f.StackUp.Critical)

	g.AdvancedFeatures.Holes.Count = 40
	assert.Equal(t, 10, Analyze(g, model.ToleranceStandard, "").StackUp.ChainLength)

	complexPart := part(model.ComplexityComplex, 100)
	assert.Equal(t, 5, Analyze(complexPart, model.ToleranceStandard, "").StackUp.ChainLength)
}

func TestUnknownClassIsStandard(t *testing.T) {
	f := Analyze(part(model.ComplexitySimple, 10), model.ToleranceClass("ultra"), "")
	assert.Equal(t, model.ToleranceStandard, f.ToleranceClass)
	assert.InDelta(t, 0.05, Capability("ultra"), 1e-12)
}

func TestGDTCostsScaleWithClass(t *testing.T) {
	g := part(model.ComplexitySimple, 10)
	std := Analyze(g, model.ToleranceStandard, "").GDTCosts
	tight := Analyze(g, model.ToleranceTight, "").GDTCosts
	require.Len(t, tight, len(std))
	for i := range std {
		assert.InDelta(t, 2*std[i].CostPercent, tight[i].CostPercent, 1e-9)
	}
}

func TestAnalyzeWith_ConfiguredLadder(t *testing.T) {
	th := model.DefaultThresholds().Tolerance
	th.Classes = map[model.ToleranceClass]model.ToleranceStep{
		model.TolerancePrecision: {Process: "jig-grinding", Capability: 0.01, BasePct: 40, Factor: 3},
	}
	th.CriticalStack = 1
	th.MaxChain = 4

	g := part(model.ComplexityModerate, 100)
	g.AdvancedFeatures.Holes.Count = 12

	f := AnalyzeWith(g, model.TolerancePrecision, "", th)
	assert.Equal(t, "jig-grinding", f.RequiredProcess)
	assert.InDelta(t, 0.01, f.CapabilityIndex, 1e-12)
	// moderate complexity 3 plus the hole pattern 5, tripled
	assert.InDelta(t, 40+8*3, f.AdditionalCostPercent, 1e-9)
	require.NotNil(t, f.StackUp)
	assert.Equal(t, 4, f.StackUp.ChainLength)
	assert.False(t, f.StackUp.Critical)

	std := AnalyzeWith(g, model.ToleranceStandard, "", th)
	assert.Equal(t, "standard-cnc", std.RequiredProcess)
	assert.False(t, std.StackUp.Critical)

	assert.Equal(t, Analyze(g, model.ToleranceTight, ""), AnalyzeWith(g, model.ToleranceTight, "", model.DefaultThresholds().Tolerance))
}
