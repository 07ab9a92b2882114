package model

import (
	"math"
	"testing"
)

func TestNewBoundingBoxExtents(t *testing.T) {
	bb := NewBoundingBox(Point3D{X: -10, Y: 0, Z: 5}, Point3D{X: 30, Y: 20, Z: 7})

	if bb.X != 40 || bb.Y != 20 || bb.Z != 2 {
		t.Errorf("unexpected extents %v", bb.Dims())
	}
	if bb.MinDim() != 2 || bb.MaxDim() != 40 {
		t.Errorf("unexpected min/max dim %f/%f", bb.MinDim(), bb.MaxDim())
	}
	if math.Abs(bb.Volume()-1600) > 1e-9 {
		t.Errorf("expected volume 1600, got %f", bb.Volume())
	}
	c := bb.Center()
	if c.X != 10 || c.Y != 10 || c.Z != 6 {
		t.Errorf("unexpected center %+v", c)
	}
}

func TestNewBoundingBoxInvertedCornersClampToZero(t *testing.T) {
	bb := NewBoundingBox(Point3D{X: 1, Y: 1, Z: 1}, Point3D{})
	if bb.X != 0 || bb.Y != 0 || bb.Z != 0 {
		t.Errorf("expected zero extents, got %v", bb.Dims())
	}
}

func TestSortedDoesNotMutate(t *testing.T) {
	bb := NewBoundingBox(Point3D{}, Point3D{X: 3, Y: 1, Z: 2})
	s := bb.Sorted()
	if s != [3]float64{1, 2, 3} {
		t.Errorf("unexpected sort %v", s)
	}
	if bb.X != 3 {
		t.Error("Sorted must not reorder the box")
	}
}

func TestComplexityLevelRoundTrip(t *testing.T) {
	for _, c := range []Complexity{ComplexitySimple, ComplexityModerate, ComplexityComplex} {
		if got := ComplexityFromLevel(c.Level()); got != c {
			t.Errorf("round trip of %s gave %s", c, got)
		}
	}
	if ComplexityFromLevel(7) != ComplexityComplex {
		t.Error("levels above 2 should clamp to complex")
	}
}

func TestParseProcessAliases(t *testing.T) {
	cases := map[string]Process{
		"milling":     ProcessMilling,
		"cnc-turning": ProcessTurning,
		"sheet":       ProcessSheetMetal,
		"manual":      ProcessManualQuote,
	}
	for in, want := range cases {
		got, ok := ParseProcess(in)
		if !ok || got != want {
			t.Errorf("ParseProcess(%q) = %s, %v", in, got, ok)
		}
	}
	if _, ok := ParseProcess("laser-sintering"); ok {
		t.Error("unknown process should not parse")
	}
}

func TestFeatureMapCounts(t *testing.T) {
	fm := FeatureMap{
		KindHoles:   {{TriangleIndices: []int{1}}, {TriangleIndices: []int{2}}},
		KindPockets: {{TriangleIndices: []int{1}}},
	}
	if fm.Count(KindHoles) != 2 {
		t.Errorf("expected 2 holes, got %d", fm.Count(KindHoles))
	}
	if fm.Has(KindThreads) {
		t.Error("threads should be absent")
	}
	if fm.Total() != 3 {
		t.Errorf("expected 3 features, got %d", fm.Total())
	}
}

func TestMaxIssueSeverity(t *testing.T) {
	g := &GeometryData{DFMIssues: []DFMIssue{
		{Severity: SeverityInfo, FeatureKind: KindSharpCorners},
		{Severity: SeverityCritical, FeatureKind: KindHoles},
		{Severity: SeverityWarning, FeatureKind: KindThinWalls},
	}}
	if g.MaxIssueSeverity() != SeverityCritical {
		t.Errorf("expected critical overall, got %s", g.MaxIssueSeverity())
	}
	if g.MaxIssueSeverity(KindThinWalls, KindPockets) != SeverityWarning {
		t.Errorf("expected warning for thin walls, got %s", g.MaxIssueSeverity(KindThinWalls, KindPockets))
	}
}

func TestCatalogLookup(t *testing.T) {
	cat := DefaultCatalog()

	m := cat.FindMaterial("al6061")
	if m == nil {
		t.Fatal("expected AL6061 to be found case-insensitively")
	}
	if m.Density != 2.70 {
		t.Errorf("expected density 2.70, got %f", m.Density)
	}
	if cat.FindMaterial("unobtainium") != nil {
		t.Error("unknown material should be nil")
	}
	if cat.FindFinish(DefaultFinishCode) == nil {
		t.Error("default finish missing")
	}
	if r := cat.Rate(ProcessInjectionMolding); r.Process != ProcessMilling {
		t.Errorf("expected milling rates as fallback, got %s", r.Process)
	}
	if cat.PrimarySheet().Width != 2500 {
		t.Errorf("unexpected primary sheet %+v", cat.PrimarySheet())
	}
}

func TestHardnessFactor(t *testing.T) {
	cases := map[string]float64{
		"Titanium Ti6Al4V":    1.5,
		"Stainless Steel 304": 1.2,
		"Brass C360":          0.9,
		"ABS Plastic":         1.3,
		"Aluminum 6061-T6":    1.0,
	}
	for name, want := range cases {
		if got := HardnessFactor(name); got != want {
			t.Errorf("HardnessFactor(%q) = %f, want %f", name, got, want)
		}
	}
}
