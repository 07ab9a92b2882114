package dfm

import (
	"testing"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc() model.FeatureLocation {
	return model.FeatureLocation{TriangleIndices: []int{0}, Confidence: 0.5}
}

func geometry(size float64) *model.GeometryData {
	return &model.GeometryData{
		GeometrySummary: model.GeometrySummary{
			BoundingBox: model.NewBoundingBox(model.Point3D{}, model.Point3D{X: size, Y: size, Z: size}),
		},
		FeatureMap: model.FeatureMap{},
	}
}

func find(issues []model.DFMIssue, typ string) *model.DFMIssue {
	for i := range issues {
		if issues[i].Type == typ {
			return &issues[i]
		}
	}
	return nil
}

func TestThinWallSeverity(t *testing.T) {
	th := model.DefaultThresholds().DFM
	tests := []struct {
		thickness float64
		want      model.Severity
	}{
		{0.3, model.SeverityCritical},
		{0.8, model.SeverityWarning},
		{1.2, model.SeverityInfo},
	}
	for _, tt := range tests {
		g := geometry(50)
		g.FeatureMap[model.KindThinWalls] = []model.FeatureLocation{loc()}
		g.AdvancedFeatures.MinWallThickness = tt.thickness
		issue := find(Issues(g, th), "thin-wall")
		require.NotNil(t, issue)
		assert.Equal(t, tt.want, issue.Severity, "thickness %.1f", tt.thickness)
	}
}

func TestDeepPocketAndHole(t *testing.T) {
	th := model.DefaultThresholds().DFM
	g := geometry(50)
	g.AdvancedFeatures.Pockets = model.PocketStats{Count: 1, MaxDepthRatio: 7}
	g.AdvancedFeatures.Holes = model.HoleStats{Count: 2, MaxDepthRatio: 8, MinDiameter: 0.8, DrillingMethod: model.DrillPeck}

	issues := Issues(g, th)
	require.NotNil(t, find(issues, "deep-pocket"))
	assert.Equal(t, model.SeverityCritical, find(issues, "deep-pocket").Severity)
	require.NotNil(t, find(issues, "deep-hole"))
	assert.Equal(t, model.SeverityWarning, find(issues, "deep-hole").Severity)
	require.NotNil(t, find(issues, "small-hole"))

	assert.Equal(t, model.SeverityCritical, issues[0].Severity, "most severe first")
}

func TestShallowHolesRaiseNothing(t *testing.T) {
	g := geometry(50)
	g.FeatureMap[model.KindHoles] = []model.FeatureLocation{loc(), loc(), loc(), loc()}
	g.AdvancedFeatures.Holes = model.HoleStats{Count: 4, MaxDepthRatio: 5.1, MinDiameter: 9.8}

	assert.Empty(t, Issues(g, model.DefaultThresholds().DFM))
	assert.Equal(t, model.SeverityInfo, g.MaxIssueSeverity())
}

func TestOversizeAndSheetHoles(t *testing.T) {
	g := geometry(800)
	g.SheetMetalFeatures = &model.SheetMetalFeatures{Thickness: 3, SmallHoleCount: 2}
	issues := Issues(g, model.DefaultThresholds().DFM)

	assert.NotNil(t, find(issues, "oversize"))
	sheet := find(issues, "sheet-small-hole")
	require.NotNil(t, sheet)
	assert.Equal(t, 2, sheet.Count)
}

func TestFeatureDrivenIssues(t *testing.T) {
	g := geometry(50)
	for _, k := range []model.FeatureKind{model.KindUndercuts, model.KindSharpCorners, model.KindThreads} {
		g.FeatureMap[k] = []model.FeatureLocation{loc()}
	}
	issues := Issues(g, model.DefaultThresholds().DFM)
	require.Len(t, issues, 3)
	assert.Equal(t, "undercut", issues[0].Type)
	assert.Equal(t, model.SeverityWarning, issues[0].Severity)
}

func names(ops []model.SecondaryOperation) []string {
	var out []string
	for _, op := range ops {
		out = append(out, op.Name)
	}
	return out
}

func TestSecondaryOps(t *testing.T) {
	cat := model.DefaultCatalog()

	g := geometry(50)
	g.RecommendedProcess = model.ProcessMilling
	g.FeatureMap[model.KindHoles] = []model.FeatureLocation{loc()}
	g.FeatureMap[model.KindThreads] = []model.FeatureLocation{loc()}

	ops := names(SecondaryOps(g, Context{Material: cat.FindMaterial("AL6061"), Finish: "anodize", Tolerance: model.ToleranceTight}))
	assert.Contains(t, ops, "deburring")
	assert.Contains(t, ops, "tapping")
	assert.Contains(t, ops, "reaming")
	assert.Contains(t, ops, "anodizing")
	assert.Contains(t, ops, "grinding")
	assert.NotContains(t, ops, "passivation")

	ops = names(SecondaryOps(g, Context{Material: cat.FindMaterial("SS304"), Tolerance: model.ToleranceStandard}))
	assert.Contains(t, ops, "passivation")
	assert.NotContains(t, ops, "reaming")

	sheet := geometry(200)
	sheet.RecommendedProcess = model.ProcessSheetMetal
	sheet.SheetMetalFeatures = &model.SheetMetalFeatures{Thickness: 1.5, HoleCount: 4}
	ops = names(SecondaryOps(sheet, Context{Finish: "powder-coat"}))
	assert.Contains(t, ops, "hardware insertion")
	assert.Contains(t, ops, "powder coating")
}
