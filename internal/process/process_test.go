package process

import (
	"testing"

	"github.com/piwi3910/partquote/internal/analysis"
	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/mesh"
	"github.com/piwi3910/partquote/internal/mesh/meshtest"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func partOf(tris []geometry.Triangle, hints Hints) Part {
	th := model.DefaultThresholds()
	sum := mesh.Summarize(meshtest.Mesh(tris), th.Mesh.DefaultDensity, th.Mesh)
	return PartFromAnalysis(sum, analysis.Analyze(tris, th), hints)
}

func classify(p Part) Decision {
	return NewClassifier(model.DefaultThresholds().Classifier).Classify(p)
}

func TestClassifyFlatPlateIsSheetMetal(t *testing.T) {
	p := partOf(meshtest.Plate(200, 150, 2), Hints{})
	d := classify(p)

	assert.Equal(t, model.ProcessSheetMetal, d.Recommendation.Process)
	assert.GreaterOrEqual(t, d.Recommendation.Confidence, 0.70)
	assert.InDelta(t, 100, d.Characteristics.SheetMetalScore, 1e-9)
	assert.False(t, d.Characteristics.IsRotational)
	assert.NotEmpty(t, d.Recommendation.Reasoning)

	sm := NewSheetEstimator(model.DefaultThresholds().SheetMetal).Estimate(p, d.Characteristics, model.ToleranceStandard)
	assert.Equal(t, 0, sm.BendCount)
	assert.Empty(t, sm.BendAngles)
	assert.Equal(t, model.PartFlatPattern, sm.PartType)
	assert.Equal(t, model.BendNone, sm.BendingMethod)
	assert.Equal(t, model.CutLaser, sm.CuttingMethod)
	assert.Equal(t, 4, sm.CornerCount)
	assert.InDelta(t, 2, sm.Thickness, 0.1)
	assert.InDelta(t, 150, sm.Width, 1e-9)
	assert.InDelta(t, 200, sm.Length, 1e-9)
	assert.Equal(t, model.ComplexitySimple, sm.Complexity)
}

func TestClassifyCubeWithHolesIsMilling(t *testing.T) {
	d := classify(partOf(meshtest.CubeWithHoles(50, 5, 5), Hints{}))

	assert.Equal(t, model.ProcessMilling, d.Recommendation.Process)
	assert.GreaterOrEqual(t, d.Recommendation.Confidence, 0.75)
	assert.LessOrEqual(t, d.Recommendation.Confidence, 0.95)
	assert.Less(t, d.Characteristics.SheetMetalScore, 35.0)
	assert.False(t, d.Characteristics.IsRotational)
	assert.InDelta(t, 1, d.Characteristics.DimensionBalance, 1e-9)
}

func TestClassifyRodIsTurning(t *testing.T) {
	d := classify(partOf(meshtest.Cylinder(10, 100, 32), Hints{}))

	assert.True(t, d.Characteristics.IsRotational)
	assert.Greater(t, d.Characteristics.TurningScore, 60.0)
	assert.Equal(t, model.ProcessTurning, d.Recommendation.Process)
}

func TestClassifyTinyDimensionIsManualQuote(t *testing.T) {
	foil := meshtest.Box(r3.Vec{}, r3.Vec{X: 100, Y: 100, Z: 0.3})
	d := classify(partOf(foil, Hints{}))
	assert.Equal(t, model.ProcessManualQuote, d.Recommendation.Process)

	// Hints never override the envelope guard.
	d = classify(partOf(foil, Hints{Sheet: &SheetHint{IsSheetMetal: true}}))
	assert.Equal(t, model.ProcessManualQuote, d.Recommendation.Process)
}

func TestClassifyEmptyMesh(t *testing.T) {
	d := classify(partOf(nil, Hints{}))
	assert.Equal(t, model.ProcessManualQuote, d.Recommendation.Process)
	assert.InDelta(t, 1, d.Recommendation.Confidence, 1e-9)
}

func TestClassifyOversizeIsManualQuote(t *testing.T) {
	block := meshtest.Box(r3.Vec{}, r3.Vec{X: 1000, Y: 800, Z: 800})
	d := classify(partOf(block, Hints{}))
	assert.Equal(t, model.ProcessManualQuote, d.Recommendation.Process)
}

func TestClassifyIsDeterministic(t *testing.T) {
	p := partOf(meshtest.CubeWithHoles(50, 5, 5), Hints{})
	first := classify(p)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, classify(p))
	}
}

func TestClassifyRemoteSheetHint(t *testing.T) {
	bb := model.NewBoundingBox(model.Point3D{}, model.Point3D{X: 300, Y: 200, Z: 40})
	p := Part{
		Summary: model.GeometrySummary{Volume: 60000, SurfaceArea: 120000, BoundingBox: bb},
		Hints:   Hints{Sheet: &SheetHint{IsSheetMetal: true, Thickness: 1.5}},
	}
	d := classify(p)
	assert.Equal(t, model.ProcessSheetMetal, d.Recommendation.Process)
	assert.InDelta(t, 0.9, d.Recommendation.Confidence, 1e-9)

	sm := NewSheetEstimator(model.DefaultThresholds().SheetMetal).Estimate(p, d.Characteristics, model.ToleranceStandard)
	assert.InDelta(t, 1.5, sm.Thickness, 1e-9)
}

func TestClassifyPlasticHighVolumeIsMolding(t *testing.T) {
	cat := model.DefaultCatalog()
	abs := cat.FindMaterial("ABS")
	require.NotNil(t, abs)

	d := classify(partOf(meshtest.CubeWithHoles(50, 5, 5), Hints{Material: abs, Quantity: 5000}))
	assert.Equal(t, model.ProcessInjectionMolding, d.Recommendation.Process)

	d = classify(partOf(meshtest.CubeWithHoles(50, 5, 5), Hints{Material: abs, Quantity: 10}))
	assert.Equal(t, model.ProcessMilling, d.Recommendation.Process)
}

func TestCuttingMethod(t *testing.T) {
	e := NewSheetEstimator(model.DefaultThresholds().SheetMetal)
	tests := []struct {
		name string
		f    model.SheetMetalFeatures
		want string
	}{
		{"waterjet", model.SheetMetalFeatures{Thickness: 30}, model.CutWaterjet},
		{"plasma", model.SheetMetalFeatures{Thickness: 15}, model.CutPlasma},
		{"punch", model.SheetMetalFeatures{Thickness: 2, HoleCount: 6, CurvedCutLength: 100}, model.CutTurretPunch},
		{"combined", model.SheetMetalFeatures{Thickness: 2, HoleCount: 6, CurvedCutLength: 400}, model.CutCombined},
		{"few holes", model.SheetMetalFeatures{Thickness: 2, HoleCount: 2}, model.CutLaser},
		{"laser", model.SheetMetalFeatures{Thickness: 8, HoleCount: 10}, model.CutLaser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.f
			assert.Equal(t, tt.want, e.cuttingMethod(&f))
		})
	}
}

func TestPartTypeAndBending(t *testing.T) {
	e := NewSheetEstimator(model.DefaultThresholds().SheetMetal)
	tests := []struct {
		bends      int
		efficiency float64
		want       string
	}{
		{0, 1, model.PartFlatPattern},
		{2, 0.5, model.PartBracket},
		{4, 0.5, model.PartChannel},
		{4, 0.05, model.PartEnclosure},
		{8, 0.5, model.PartComplexFormed},
	}
	for _, tt := range tests {
		f := &model.SheetMetalFeatures{BendCount: tt.bends}
		assert.Equal(t, tt.want, e.partType(f, tt.efficiency), "bends=%d", tt.bends)
	}

	assert.Equal(t, model.BendAir, bendingMethod(&model.SheetMetalFeatures{BendCount: 2, BendAngles: []float64{90, 90}}))
	assert.Equal(t, model.BendBottoming, bendingMethod(&model.SheetMetalFeatures{BendCount: 2, BendAngles: []float64{90, 135}}))
	assert.Equal(t, model.BendPanel, bendingMethod(&model.SheetMetalFeatures{BendCount: 12}))
}

func TestSheetComplexityEscalates(t *testing.T) {
	flat := &model.SheetMetalFeatures{PartType: model.PartFlatPattern}
	assert.Equal(t, model.ComplexitySimple, complexity(flat, model.ToleranceStandard))
	assert.Equal(t, model.ComplexityModerate, complexity(flat, model.ToleranceTight))

	small := &model.SheetMetalFeatures{BendCount: 2, SmallHoleCount: 1, BendAngles: []float64{90, 90}}
	assert.Equal(t, model.ComplexityComplex, complexity(small, model.ToleranceStandard))
}

func TestBendCountBands(t *testing.T) {
	e := NewSheetEstimator(model.DefaultThresholds().SheetMetal)
	assert.Equal(t, 0, e.bendCount(12))
	assert.Equal(t, 2, e.bendCount(150))
	assert.Equal(t, 4, e.bendCount(1000))
	assert.Equal(t, 12, e.bendCount(50000))
}
