package model

import (
	"math"
	"sort"
)

// Complexity grades how hard a part is to produce.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Level maps the complexity onto 0 (simple) .. 2 (complex).
func (c Complexity) Level() int {
	switch c {
	case ComplexityModerate:
		return 1
	case ComplexityComplex:
		return 2
	default:
		return 0
	}
}

// ComplexityFromLevel is the inverse of Level, clamping out-of-range values.
func ComplexityFromLevel(level int) Complexity {
	switch {
	case level >= 2:
		return ComplexityComplex
	case level == 1:
		return ComplexityModerate
	default:
		return ComplexitySimple
	}
}

// Process is a manufacturing process the engine can recommend.
type Process string

const (
	ProcessMilling          Process = "cnc-milling"
	ProcessTurning          Process = "cnc-turning"
	ProcessSheetMetal       Process = "sheet-metal"
	ProcessInjectionMolding Process = "injection-molding"
	ProcessManualQuote      Process = "manual-quote"
)

// AllProcesses lists every process in recommendation order.
var AllProcesses = []Process{
	ProcessMilling,
	ProcessTurning,
	ProcessSheetMetal,
	ProcessInjectionMolding,
	ProcessManualQuote,
}

// ParseProcess accepts the canonical process name and a few short aliases.
func ParseProcess(s string) (Process, bool) {
	switch s {
	case "cnc-milling", "milling", "mill":
		return ProcessMilling, true
	case "cnc-turning", "turning", "lathe":
		return ProcessTurning, true
	case "sheet-metal", "sheet", "sheetmetal":
		return ProcessSheetMetal, true
	case "injection-molding", "molding", "injection":
		return ProcessInjectionMolding, true
	case "manual-quote", "manual":
		return ProcessManualQuote, true
	}
	return "", false
}

// MeshFormat is the encoding a mesh was read from.
type MeshFormat string

const (
	FormatBinary MeshFormat = "binary"
	FormatText   MeshFormat = "text"
)

// Source records where the geometry descriptors came from.
type Source string

const (
	SourceMesh      Source = "mesh"      // parsed triangle mesh
	SourceRemote    Source = "remote"    // remote extraction service
	SourceHeuristic Source = "heuristic" // local text heuristic after a remote failure
	SourceProfile   Source = "profile"   // 2D flat profile (DXF)
)

// Point3D is a coordinate in mm.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BoundingBox is an axis-aligned box. X, Y and Z hold the extents.
type BoundingBox struct {
	Min Point3D `json:"min"`
	Max Point3D `json:"max"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
}

// NewBoundingBox builds a box from its corners and fills in the extents.
func NewBoundingBox(min, max Point3D) BoundingBox {
	return BoundingBox{
		Min: min,
		Max: max,
		X:   math.Max(0, max.X-min.X),
		Y:   math.Max(0, max.Y-min.Y),
		Z:   math.Max(0, max.Z-min.Z),
	}
}

// Dims returns the extents as an array indexed by axis.
func (b BoundingBox) Dims() [3]float64 {
	return [3]float64{b.X, b.Y, b.Z}
}

// Sorted returns the extents in ascending order.
func (b BoundingBox) Sorted() [3]float64 {
	d := b.Dims()
	s := d[:]
	sort.Float64s(s)
	return d
}

func (b BoundingBox) MinDim() float64 { return b.Sorted()[0] }
func (b BoundingBox) MaxDim() float64 { return b.Sorted()[2] }

func (b BoundingBox) Volume() float64 { return b.X * b.Y * b.Z }

func (b BoundingBox) SurfaceArea() float64 {
	return 2 * (b.X*b.Y + b.Y*b.Z + b.X*b.Z)
}

func (b BoundingBox) Center() Point3D {
	return Point3D{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// GeometrySummary holds the global descriptors of a part.
type GeometrySummary struct {
	Volume                 float64     `json:"volume"`       // mm³
	SurfaceArea            float64     `json:"surface_area"` // mm²
	BoundingBox            BoundingBox `json:"bounding_box"`
	TriangleCount          int         `json:"triangle_count"`
	Complexity             Complexity  `json:"complexity"`
	MaterialWeight         float64     `json:"material_weight"`          // g
	EstimatedMachiningTime float64     `json:"estimated_machining_time"` // minutes
	Format                 MeshFormat  `json:"format,omitempty"`
}

// SurfaceToVolume returns the surface/volume ratio, or 0 for an empty part.
func (s GeometrySummary) SurfaceToVolume() float64 {
	if s.Volume <= 0 {
		return 0
	}
	return s.SurfaceArea / s.Volume
}

// FeatureKind names a manufacturing-relevant feature class.
type FeatureKind string

const (
	KindHoles                FeatureKind = "holes"
	KindPockets              FeatureKind = "pockets"
	KindThinWalls            FeatureKind = "thin_walls"
	KindUndercuts            FeatureKind = "undercuts"
	KindSharpCorners         FeatureKind = "sharp_corners"
	KindRibs                 FeatureKind = "ribs"
	KindBosses               FeatureKind = "bosses"
	KindFillets              FeatureKind = "fillets"
	KindChamfers             FeatureKind = "chamfers"
	KindThreads              FeatureKind = "threads"
	KindCounterbores         FeatureKind = "counterbores"
	KindCountersinks         FeatureKind = "countersinks"
	KindSlots                FeatureKind = "slots"
	KindToolAccessRestricted FeatureKind = "tool_access_restricted"
	KindComplexSurfaces      FeatureKind = "complex_surfaces"
)

// AllFeatureKinds lists the kinds in detection order.
var AllFeatureKinds = []FeatureKind{
	KindHoles,
	KindBosses,
	KindThreads,
	KindCounterbores,
	KindCountersinks,
	KindPockets,
	KindSlots,
	KindFillets,
	KindChamfers,
	KindSharpCorners,
	KindThinWalls,
	KindRibs,
	KindUndercuts,
	KindToolAccessRestricted,
	KindComplexSurfaces,
}

// FeatureLocation is one detected instance of a feature. Optional
// measurements are zero when they do not apply.
type FeatureLocation struct {
	TriangleIndices []int       `json:"triangle_indices"`
	Centroid        Point3D     `json:"centroid"`
	BoundingBox     BoundingBox `json:"bounding_box"`
	Confidence      float64     `json:"confidence"`
	Diameter        float64     `json:"diameter,omitempty"`
	Depth           float64     `json:"depth,omitempty"`
	Thickness       float64     `json:"thickness,omitempty"`
}

// FeatureMap groups detected features by kind. A triangle may belong to
// features of several kinds.
type FeatureMap map[FeatureKind][]FeatureLocation

func (m FeatureMap) Count(kind FeatureKind) int { return len(m[kind]) }

func (m FeatureMap) Has(kind FeatureKind) bool { return len(m[kind]) > 0 }

// Total returns the number of features across all kinds.
func (m FeatureMap) Total() int {
	n := 0
	for _, locs := range m {
		n += len(locs)
	}
	return n
}

// DrillingMethod is the hole-making strategy implied by hole geometry.
type DrillingMethod string

const (
	DrillStandard DrillingMethod = "standard"
	DrillPeck     DrillingMethod = "peck"
	DrillGun      DrillingMethod = "gun-drill"
	DrillBoring   DrillingMethod = "boring"
)

// HoleStats aggregates the detected holes.
type HoleStats struct {
	Count          int            `json:"count"`
	ThroughCount   int            `json:"through_count"`
	MinDiameter    float64        `json:"min_diameter"`
	MaxDiameter    float64        `json:"max_diameter"`
	AvgDiameter    float64        `json:"avg_diameter"`
	MinDepth       float64        `json:"min_depth"`
	MaxDepth       float64        `json:"max_depth"`
	AvgDepth       float64        `json:"avg_depth"`
	MaxDepthRatio  float64        `json:"max_depth_ratio"` // depth / diameter
	DrillingMethod DrillingMethod `json:"drilling_method,omitempty"`
}

// PocketStats aggregates pockets and slots.
type PocketStats struct {
	Count         int     `json:"count"`
	MinDepth      float64 `json:"min_depth"`
	MaxDepth      float64 `json:"max_depth"`
	AvgDepth      float64 `json:"avg_depth"`
	MaxDepthRatio float64 `json:"max_depth_ratio"` // depth / width
}

// AdvancedFeatures is the per-kind aggregate view of a FeatureMap.
type AdvancedFeatures struct {
	Counts             map[FeatureKind]int `json:"counts"`
	Holes              HoleStats           `json:"holes"`
	Pockets            PocketStats         `json:"pockets"`
	ThreadCount        int                 `json:"thread_count"`
	ThinWallCount      int                 `json:"thin_wall_count"`
	MinWallThickness   float64             `json:"min_wall_thickness,omitempty"`
	UndercutCount      int                 `json:"undercut_count"`
	SheetFormingMethod string              `json:"sheet_forming_method,omitempty"`
}

// ProcessRecommendation is the classifier verdict for one part.
type ProcessRecommendation struct {
	Process    Process  `json:"process"`
	Confidence float64  `json:"confidence"`
	Reasoning  []string `json:"reasoning"`
}

// PartCharacteristics holds the scores and shape descriptors the
// classifier used.
type PartCharacteristics struct {
	SheetMetalScore          float64 `json:"sheet_metal_score"`
	TurningScore             float64 `json:"turning_score"`
	MillingScore             float64 `json:"milling_score"`
	IsRotational             bool    `json:"is_rotational"`
	SurfaceToVolume          float64 `json:"surface_to_volume"`
	VolumeDistribution       float64 `json:"volume_distribution"`
	MaterialRemovalRatio     float64 `json:"material_removal_ratio"`
	WallThicknessConsistency float64 `json:"wall_thickness_consistency"`
	Planarity                float64 `json:"planarity"`
	Flatness                 float64 `json:"flatness"` // area share facing the thin axis
	EdgeSharpness            float64 `json:"edge_sharpness"`
	DimensionBalance         float64 `json:"dimension_balance"`
	ComplexityScore          float64 `json:"complexity_score"`
}

// Sheet-metal cutting methods.
const (
	CutLaser       = "laser"
	CutPlasma      = "plasma"
	CutWaterjet    = "waterjet"
	CutTurretPunch = "turret-punch"
	CutCombined    = "laser-punch-combined"
)

// Sheet-metal bending methods.
const (
	BendNone      = "none"
	BendAir       = "air-bending"
	BendBottoming = "bottoming"
	BendPanel     = "panel-bending"
)

// Sheet-metal part types.
const (
	PartFlatPattern   = "flat-pattern"
	PartBracket       = "bracket"
	PartChannel       = "channel"
	PartEnclosure     = "enclosure"
	PartComplexFormed = "complex-formed"
)

// SheetMetalFeatures are the estimated sheet-metal descriptors.
type SheetMetalFeatures struct {
	Thickness       float64    `json:"thickness"`
	Width           float64    `json:"width"`
	Length          float64    `json:"length"`
	BendCount       int        `json:"bend_count"`
	BendAngles      []float64  `json:"bend_angles"`
	HoleCount       int        `json:"hole_count"`
	SmallHoleCount  int        `json:"small_hole_count"`
	CornerCount     int        `json:"corner_count"`
	Hems            int        `json:"hems"`
	Louvers         int        `json:"louvers"`
	Embossments     int        `json:"embossments"`
	Lances          int        `json:"lances"`
	CutLength       float64    `json:"cut_length"`        // mm
	CurvedCutLength float64    `json:"curved_cut_length"` // mm
	FlatPatternArea float64    `json:"flat_pattern_area"` // mm²
	CuttingMethod   string     `json:"cutting_method"`
	BendingMethod   string     `json:"bending_method"`
	PartType        string     `json:"part_type"`
	Complexity      Complexity `json:"complexity"`
}

// ToleranceClass is the requested general tolerance grade.
type ToleranceClass string

const (
	ToleranceStandard  ToleranceClass = "standard"
	TolerancePrecision ToleranceClass = "precision"
	ToleranceTight     ToleranceClass = "tight"
)

// ParseToleranceClass accepts a class name; empty means standard.
func ParseToleranceClass(s string) (ToleranceClass, bool) {
	switch s {
	case "", "standard":
		return ToleranceStandard, true
	case "precision":
		return TolerancePrecision, true
	case "tight":
		return ToleranceTight, true
	}
	return "", false
}

// FeatureTolerance is the achievable tolerance for one feature type.
type FeatureTolerance struct {
	Feature    string  `json:"feature"`
	Tolerance  float64 `json:"tolerance"` // ± mm
	Achievable bool    `json:"achievable"`
	Note       string  `json:"note,omitempty"`
}

// GDTCost is the cost impact of a geometric tolerance callout.
type GDTCost struct {
	Characteristic string  `json:"characteristic"`
	CostPercent    float64 `json:"cost_percent"`
	Note           string  `json:"note,omitempty"`
}

// StackUp is a tolerance stack-up estimate over an inferred chain.
type StackUp struct {
	ChainLength int     `json:"chain_length"`
	WorstCase   float64 `json:"worst_case"` // mm
	RSS         float64 `json:"rss"`        // mm
	Critical    bool    `json:"critical"`
}

// ToleranceFeasibility is the verdict for one tolerance class.
type ToleranceFeasibility struct {
	ToleranceClass        ToleranceClass     `json:"tolerance_class"`
	IsAchievable          bool               `json:"is_achievable"`
	RequiredProcess       string             `json:"required_process"`
	CapabilityIndex       float64            `json:"capability_index"` // mm
	Concerns              []string           `json:"concerns"`
	Recommendations       []string           `json:"recommendations"`
	AdditionalCostPercent float64            `json:"additional_cost_percent"`
	FeatureTolerances     []FeatureTolerance `json:"feature_tolerances"`
	GDTCosts              []GDTCost          `json:"gdt_costs"`
	StackUp               *StackUp           `json:"stack_up,omitempty"`
}

// Severity grades a DFM issue.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities: info < warning < critical.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// DFMIssue is one design-for-manufacturing finding.
type DFMIssue struct {
	Type           string      `json:"type"`
	Severity       Severity    `json:"severity"`
	FeatureKind    FeatureKind `json:"feature_kind,omitempty"`
	Count          int         `json:"count"`
	Message        string      `json:"message"`
	Recommendation string      `json:"recommendation"`
}

// SecondaryOperation is a recommended post-process.
type SecondaryOperation struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// GeometryData is the full analysis result for one part.
type GeometryData struct {
	Name   string `json:"name,omitempty"`
	Source Source `json:"source"`
	GeometrySummary

	RecommendedProcess  Process              `json:"recommended_process"`
	ProcessConfidence   float64              `json:"process_confidence"`
	ProcessReasoning    []string             `json:"process_reasoning"`
	PartCharacteristics PartCharacteristics  `json:"part_characteristics"`
	SheetMetalFeatures  *SheetMetalFeatures  `json:"sheet_metal_features,omitempty"`
	AdvancedFeatures    AdvancedFeatures     `json:"advanced_features"`
	FeatureMap          FeatureMap           `json:"feature_map"`
	SecondaryOps        []SecondaryOperation `json:"recommended_secondary_ops"`
	DFMIssues           []DFMIssue           `json:"dfm_issues"`
	Notes               []string             `json:"notes,omitempty"`
}

// Recommendation returns the process verdict as a single record.
func (g *GeometryData) Recommendation() ProcessRecommendation {
	return ProcessRecommendation{
		Process:    g.RecommendedProcess,
		Confidence: g.ProcessConfidence,
		Reasoning:  g.ProcessReasoning,
	}
}

// SetRecommendation copies a classifier verdict onto the result.
func (g *GeometryData) SetRecommendation(r ProcessRecommendation) {
	g.RecommendedProcess = r.Process
	g.ProcessConfidence = r.Confidence
	g.ProcessReasoning = r.Reasoning
}

// MaxIssueSeverity returns the highest severity among the DFM issues,
// optionally restricted to the given kinds.
func (g *GeometryData) MaxIssueSeverity(kinds ...FeatureKind) Severity {
	max := SeverityInfo
	for _, issue := range g.DFMIssues {
		if len(kinds) > 0 && !containsKind(kinds, issue.FeatureKind) {
			continue
		}
		if issue.Severity.Rank() > max.Rank() {
			max = issue.Severity
		}
	}
	return max
}

func containsKind(kinds []FeatureKind, k FeatureKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}
