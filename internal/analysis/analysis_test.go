package analysis

import (
	"math"
	"sort"
	"testing"

	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/mesh"
	"github.com/piwi3910/partquote/internal/mesh/meshtest"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func parsed(t *testing.T, tris []geometry.Triangle) []geometry.Triangle {
	t.Helper()
	m, err := mesh.Parse(meshtest.Binary(tris))
	require.NoError(t, err)
	return m.Triangles
}

func TestAnalyzeTrianglesOrientation(t *testing.T) {
	infos := AnalyzeTriangles(meshtest.Plate(200, 150, 2), model.DefaultThresholds().Triangles)
	require.Len(t, infos, 12)

	counts := map[Orientation]int{}
	for _, info := range infos {
		counts[info.Orientation]++
		assert.InDelta(t, 1.0, r3.Norm(info.Normal), 1e-9)
	}
	assert.Equal(t, 4, counts[Horizontal])
	assert.Equal(t, 8, counts[Vertical])
	assert.Equal(t, 0, counts[Angled])
}

func TestCurvatureUsesIndexWindow(t *testing.T) {
	flat := meshtest.AxisRect(2, 0, 0, 10, 0, 10, 1, 2) // 8 coplanar triangles
	wall := meshtest.AxisRect(0, 10, 0, 10, 0, 10, 1, 1)
	tris := append(append([]geometry.Triangle{}, flat...), wall...)

	infos := AnalyzeTriangles(tris, model.TriangleThresholds{HorizontalDot: 0.85, VerticalDot: 0.15, CurvatureWindow: 3})

	assert.InDelta(t, 0, infos[0].Curvature, 1e-9, "window only sees coplanar faces")
	// Index 7 sees 3 flat faces behind it and 2 perpendicular faces ahead.
	assert.InDelta(t, 2.0/5.0, infos[7].Curvature, 1e-9)
	assert.Equal(t, Vertical, infos[8].Orientation)
}

func TestIndexWithin(t *testing.T) {
	var infos []TriangleInfo
	for i := 0; i < 10; i++ {
		infos = append(infos, TriangleInfo{Index: i, Centroid: r3.Vec{X: float64(i)}})
	}
	idx := NewIndex(infos)

	got := idx.Within(r3.Vec{X: 4.2}, 1.5)
	sort.Ints(got)
	assert.Equal(t, []int{3, 4, 5}, got)
	assert.Empty(t, idx.Within(r3.Vec{X: 100}, 1))
	assert.Empty(t, NewIndex(nil).Within(r3.Vec{}, 5))
}

func TestGrowVisitedSetsArePerCall(t *testing.T) {
	var infos []TriangleInfo
	for i := 0; i < 6; i++ {
		infos = append(infos, TriangleInfo{Index: i, Centroid: r3.Vec{X: float64(i)}})
	}
	idx := NewIndex(infos)
	all := []bool{true, true, true, true, true, true}
	some := []bool{false, false, true, true, true, false}

	first := grow(infos, idx, all, 1.1)
	second := grow(infos, idx, some, 1.1)

	require.Len(t, first, 1)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, first[0])
	require.Len(t, second, 1)
	assert.Equal(t, []int{2, 3, 4}, second[0], "triangles claimed by an earlier kind stay available")
}

func TestAngularSpan(t *testing.T) {
	var ring, half []float64
	for k := 0; k < 16; k++ {
		a := -math.Pi + 2*math.Pi*float64(k)/16
		ring = append(ring, a)
		if a >= 0 {
			half = append(half, a)
		}
	}
	assert.InDelta(t, 337.5, angularSpan(ring), 1e-6)
	assert.InDelta(t, 157.5, angularSpan(half), 1e-6)
	assert.Equal(t, 0.0, angularSpan([]float64{1}))
}

func TestConfidenceBounds(t *testing.T) {
	assert.InDelta(t, 0.3, confidence(0, 8, 0, 0.95), 1e-9)
	assert.InDelta(t, 0.95, confidence(1000, 8, 1, 0.95), 1e-9)
	c := confidence(16, 8, 0.5, 0.95)
	assert.InDelta(t, 0.3+0.15+0.2, c, 1e-9)
}

func TestDetectCubeWithHoles(t *testing.T) {
	res := Analyze(parsed(t, meshtest.CubeWithHoles(50, 5, 5)), model.DefaultThresholds())

	holes := res.Features[model.KindHoles]
	require.Len(t, holes, 4)
	for _, h := range holes {
		assert.InDelta(t, 9.83, h.Diameter, 0.3)
		assert.InDelta(t, 50, h.Depth, 0.1)
		assert.GreaterOrEqual(t, h.Confidence, 0.3)
		assert.LessOrEqual(t, h.Confidence, 0.95)
		assert.True(t, sort.IntsAreSorted(h.TriangleIndices))
	}

	assert.False(t, res.Features.Has(model.KindBosses))
	assert.False(t, res.Features.Has(model.KindThinWalls))
	assert.False(t, res.Features.Has(model.KindPockets))
	assert.False(t, res.Features.Has(model.KindCounterbores))
	assert.False(t, res.Features.Has(model.KindToolAccessRestricted), "drilled holes are reachable")

	assert.Equal(t, 4, res.Advanced.Holes.Count)
	assert.Equal(t, 4, res.Advanced.Holes.ThroughCount)
	assert.Equal(t, model.DrillPeck, res.Advanced.Holes.DrillingMethod)
	assert.Equal(t, 4, res.Advanced.Counts[model.KindHoles])
}

func TestDetectPocket(t *testing.T) {
	res := Analyze(parsed(t, meshtest.PocketBlock(100, 30, 40, 10, 8)), model.DefaultThresholds())

	pockets := res.Features[model.KindPockets]
	require.Len(t, pockets, 1)
	assert.InDelta(t, 10, pockets[0].Depth, 1e-3)
	assert.InDelta(t, 40, PocketWidth(pockets[0]), 1e-3)
	assert.False(t, res.Features.Has(model.KindSlots), "square pocket is not elongated")
	assert.InDelta(t, 0.25, res.Advanced.Pockets.MaxDepthRatio, 1e-3)
}

func TestDetectPlateHasNoFeatures(t *testing.T) {
	res := Analyze(parsed(t, meshtest.Plate(200, 150, 2)), model.DefaultThresholds())
	assert.Equal(t, 0, res.Features.Total())
}

func TestDetectRodOuterSurfaceIsNotABoss(t *testing.T) {
	res := Analyze(parsed(t, meshtest.Cylinder(10, 100, 32)), model.DefaultThresholds())
	assert.False(t, res.Features.Has(model.KindBosses))
	assert.False(t, res.Features.Has(model.KindHoles))
}

func TestDetectEmptyMesh(t *testing.T) {
	res := Analyze(nil, model.DefaultThresholds())
	assert.Empty(t, res.Features)
	assert.Equal(t, 0, res.Advanced.Holes.Count)
}

func TestDrillingMethod(t *testing.T) {
	tests := []struct {
		dia, ratio float64
		want       model.DrillingMethod
	}{
		{5, 2, model.DrillStandard},
		{5, 5, model.DrillPeck},
		{5, 12, model.DrillGun},
		{30, 12, model.DrillBoring},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DrillingMethod(tt.dia, tt.ratio))
	}
}
