package model

// Thresholds gathers every tunable constant used by the analysis pipeline.
// The defaults are engineering heuristics, not physical laws.
type Thresholds struct {
	Mesh       MeshThresholds                `json:"mesh"`
	Triangles  TriangleThresholds            `json:"triangles"`
	Clusters   map[FeatureKind]ClusterParams `json:"clusters"`
	Validation ValidationThresholds          `json:"validation"`
	Classifier ClassifierThresholds          `json:"classifier"`
	SheetMetal SheetMetalThresholds          `json:"sheet_metal"`
	DFM        DFMThresholds                 `json:"dfm"`
	Tolerance  ToleranceThresholds           `json:"tolerance"`
	Pricing    PricingThresholds             `json:"pricing"`
}

// MeshThresholds drive the global summary of a mesh.
type MeshThresholds struct {
	ComplexTriangles     int     `json:"complex_triangles"`
	ComplexDensity       float64 `json:"complex_density"` // triangles per 1000 mm²
	ComplexSurfaceRatio  float64 `json:"complex_surface_ratio"`
	ModerateTriangles    int     `json:"moderate_triangles"`
	ModerateDensity      float64 `json:"moderate_density"`
	ModerateSurfaceRatio float64 `json:"moderate_surface_ratio"`
	TextFillFactor       float64 `json:"text_fill_factor"` // volume / bbox volume for text meshes
	SetupMinutes         float64 `json:"setup_minutes"`
	RemovalRate          float64 `json:"removal_rate"`    // mm³ per minute
	FinishingRate        float64 `json:"finishing_rate"`  // mm² per minute
	DefaultDensity       float64 `json:"default_density"` // g/cm³ when no material is known
}

// TriangleThresholds drive per-triangle orientation and curvature.
type TriangleThresholds struct {
	HorizontalDot   float64 `json:"horizontal_dot"` // |n·Z| above: horizontal
	VerticalDot     float64 `json:"vertical_dot"`   // |n·Z| below: vertical
	CurvatureWindow int     `json:"curvature_window"`
}

// ClusterParams controls region growing for one feature kind.
type ClusterParams struct {
	Radius  float64 `json:"radius"` // mm
	MinSize int     `json:"min_size"`
}

// ValidationThresholds are the pass marks of the per-kind geometric tests.
type ValidationThresholds struct {
	HoleCurvature        float64 `json:"hole_curvature"`
	ThreadCurvature      float64 `json:"thread_curvature"`
	SharpCornerCurvature float64 `json:"sharp_corner_curvature"`
	ComplexCurvatureMin  float64 `json:"complex_curvature_min"`
	ComplexCurvatureMax  float64 `json:"complex_curvature_max"`
	FilletCurvature      float64 `json:"fillet_curvature"`
	CylindricalAlignment float64 `json:"cylindrical_alignment"`
	CounterboreStep      float64 `json:"counterbore_step"` // p90/p10 radius ratio
	RecessDepth          float64 `json:"recess_depth"`     // mm
	RecessNeighborMax    float64 `json:"recess_neighbor_max"`
	TopClearance         float64 `json:"top_clearance"` // pockets start below max Z minus this
	Convergence          float64 `json:"convergence"`
	ConicalAlignment     float64 `json:"conical_alignment"`
	HelicalSpanDegrees   float64 `json:"helical_span_degrees"`
	HelicalMinSize       int     `json:"helical_min_size"`
	ArcSpanDegrees       float64 `json:"arc_span_degrees"` // holes and bosses must wrap at least this far
	EnvelopeRatio        float64 `json:"envelope_ratio"`   // hole or boss diameter / part cross-section
	RibElongation        float64 `json:"rib_elongation"`
	SlotElongation       float64 `json:"slot_elongation"`
	ChamferElongation    float64 `json:"chamfer_elongation"`
	ChamferConsistency   float64 `json:"chamfer_consistency"`
	OpposingDot          float64 `json:"opposing_dot"`
	ThinWallMax          float64 `json:"thin_wall_max"` // mm
	RibMax               float64 `json:"rib_max"`       // mm
	UndercutNormalZ      float64 `json:"undercut_normal_z"`
	UndercutFloorOffset  float64 `json:"undercut_floor_offset"`
	ToolAccessDepth      float64 `json:"tool_access_depth"`
	ToolAccessAspect     float64 `json:"tool_access_aspect"`
	SurfaceVariation     float64 `json:"surface_variation"`
	ThroughHoleClearance float64 `json:"through_hole_clearance"`
	MaxConfidence        float64 `json:"max_confidence"`
}

// ClassifierThresholds drive the process decision cascade.
type ClassifierThresholds struct {
	MinFeatureSize       float64   `json:"min_feature_size"` // mm, below: manual quote
	TurningScore         float64   `json:"turning_score"`
	SheetScoreBands      []float64 `json:"sheet_score_bands"`
	SheetConfidence      []float64 `json:"sheet_confidence"`
	MillingScore         float64   `json:"milling_score"`
	MaxEnvelope          float64   `json:"max_envelope"` // mm
	MaxAspect            float64   `json:"max_aspect"`
	MoldingQuantity      int       `json:"molding_quantity"`
	MoldingMaxDimension  float64   `json:"molding_max_dimension"`
	RotationalDimTol     float64   `json:"rotational_dim_tol"`
	RotationalAlignment  float64   `json:"rotational_alignment"`
	RotationalBins       int       `json:"rotational_bins"`
	RotationalMinBins    int       `json:"rotational_min_bins"`
	RotationalAreaShare  float64   `json:"rotational_area_share"`
	RotationalMaxCV      float64   `json:"rotational_max_cv"`
	PrismaticBalance     float64   `json:"prismatic_balance"`
	SheetThicknessMin    float64   `json:"sheet_thickness_min"`
	SheetThicknessMax    float64   `json:"sheet_thickness_max"`
	SheetThicknessLimit  float64   `json:"sheet_thickness_limit"`
	FlatNormalDot        float64   `json:"flat_normal_dot"`
	TieBreakConfidence   float64   `json:"tie_break_confidence"`
	RemoteHintConfidence float64   `json:"remote_hint_confidence"`
}

// SheetMetalThresholds drive the sheet-metal estimator.
type SheetMetalThresholds struct {
	BendBands           []int   `json:"bend_bands"`  // triangle count upper bounds
	BendCounts          []int   `json:"bend_counts"` // bends per band, one more than BendBands
	VarietyTriangles    int     `json:"variety_triangles"`
	FlatShare           float64 `json:"flat_share"` // flatness above which no bends are assumed
	WaterjetThickness   float64 `json:"waterjet_thickness"`
	PlasmaThickness     float64 `json:"plasma_thickness"`
	PunchThickness      float64 `json:"punch_thickness"`
	PunchMinHoles       int     `json:"punch_min_holes"`
	PunchCurvedCutMax   float64 `json:"punch_curved_cut_max"`
	EnclosureEfficiency float64 `json:"enclosure_efficiency"`
	HemTriangles        int     `json:"hem_triangles"`
	LouverTriangles     int     `json:"louver_triangles"`
	EmbossTriangles     int     `json:"emboss_triangles"`
	LanceTriangles      int     `json:"lance_triangles"`
}

// DFMThresholds drive issue severities.
type DFMThresholds struct {
	ThinWallCritical    float64 `json:"thin_wall_critical"`
	ThinWallWarning     float64 `json:"thin_wall_warning"`
	PocketRatioWarning  float64 `json:"pocket_ratio_warning"`
	PocketRatioCritical float64 `json:"pocket_ratio_critical"`
	HoleRatioWarning    float64 `json:"hole_ratio_warning"`
	HoleRatioCritical   float64 `json:"hole_ratio_critical"`
	SmallHoleDiameter   float64 `json:"small_hole_diameter"`
	OversizeEnvelope    float64 `json:"oversize_envelope"`
}

// ToleranceStep is one rung of the standard / precision / tight ladder.
type ToleranceStep struct {
	Process    string  `json:"process"`
	Capability float64 `json:"capability"` // ± mm the process holds reliably
	BasePct    float64 `json:"base_pct"`
	Factor     float64 `json:"factor"` // scales every layered add-on
}

// ToleranceThresholds drive feasibility and stack-up analysis.
type ToleranceThresholds struct {
	Classes       map[ToleranceClass]ToleranceStep `json:"classes"`
	CriticalStack float64                          `json:"critical_stack"` // mm worst case
	MinChain      int                              `json:"min_chain"`
	MaxChain      int                              `json:"max_chain"`
	ComplexChain  int                              `json:"complex_chain"`
}

// DiscountStep grants Percent off from Quantity units upwards.
type DiscountStep struct {
	Quantity int     `json:"quantity"`
	Percent  float64 `json:"percent"` // fraction
}

// PricingThresholds are the composition rates of a breakdown.
type PricingThresholds struct {
	OverheadRate         float64                    `json:"overhead_rate"`
	MarginRate           float64                    `json:"margin_rate"`
	InspectionBase       float64                    `json:"inspection_base"` // per unit at standard tolerance
	InspectionPerFeature float64                    `json:"inspection_per_feature"`
	InspectionFactor     map[ToleranceClass]float64 `json:"inspection_factor"`
	DiscountSteps        []DiscountStep             `json:"discount_steps"`
	ToleranceUpcharge    map[ToleranceClass]float64 `json:"tolerance_upcharge"`
	LeadTimeMultiplier   map[LeadTime]float64       `json:"lead_time_multiplier"`
}

// DefaultThresholds returns the built-in thresholds table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Mesh: MeshThresholds{
			ComplexTriangles:     20000,
			ComplexDensity:       50,
			ComplexSurfaceRatio:  2.0,
			ModerateTriangles:    200,
			ModerateDensity:      10,
			ModerateSurfaceRatio: 3.0,
			TextFillFactor:       0.6,
			SetupMinutes:         15,
			RemovalRate:          3000,
			FinishingRate:        1500,
			DefaultDensity:       2.70,
		},
		Triangles: TriangleThresholds{
			HorizontalDot:   0.85,
			VerticalDot:     0.15,
			CurvatureWindow: 3,
		},
		Clusters: map[FeatureKind]ClusterParams{
			KindHoles:                {Radius: 6, MinSize: 8},
			KindBosses:               {Radius: 6, MinSize: 8},
			KindThreads:              {Radius: 4, MinSize: 21},
			KindCounterbores:         {Radius: 6, MinSize: 8},
			KindCountersinks:         {Radius: 5, MinSize: 6},
			KindPockets:              {Radius: 8, MinSize: 4},
			KindSlots:                {Radius: 8, MinSize: 4},
			KindFillets:              {Radius: 4, MinSize: 5},
			KindChamfers:             {Radius: 5, MinSize: 4},
			KindSharpCorners:         {Radius: 2, MinSize: 3},
			KindThinWalls:            {Radius: 15, MinSize: 20},
			KindRibs:                 {Radius: 15, MinSize: 10},
			KindUndercuts:            {Radius: 8, MinSize: 3},
			KindToolAccessRestricted: {Radius: 5, MinSize: 6},
			KindComplexSurfaces:      {Radius: 10, MinSize: 15},
		},
		Validation: ValidationThresholds{
			HoleCurvature:        0.02,
			ThreadCurvature:      0.05,
			SharpCornerCurvature: 0.5,
			ComplexCurvatureMin:  0.05,
			ComplexCurvatureMax:  0.5,
			FilletCurvature:      0.02,
			CylindricalAlignment: 0.7,
			CounterboreStep:      1.25,
			RecessDepth:          2,
			RecessNeighborMax:    15,
			TopClearance:         1,
			Convergence:          0.3,
			ConicalAlignment:     0.6,
			HelicalSpanDegrees:   180,
			HelicalMinSize:       20,
			ArcSpanDegrees:       240,
			EnvelopeRatio:        0.9,
			RibElongation:        4,
			SlotElongation:       3,
			ChamferElongation:    3,
			ChamferConsistency:   0.95,
			OpposingDot:          -0.9,
			ThinWallMax:          1.5,
			RibMax:               5,
			UndercutNormalZ:      -0.3,
			UndercutFloorOffset:  0.5,
			ToolAccessDepth:      10,
			ToolAccessAspect:     3,
			SurfaceVariation:     0.15,
			ThroughHoleClearance: 0.5,
			MaxConfidence:        0.95,
		},
		Classifier: ClassifierThresholds{
			MinFeatureSize:       0.5,
			TurningScore:         60,
			SheetScoreBands:      []float64{85, 70, 55, 45, 35},
			SheetConfidence:      []float64{0.95, 0.85, 0.75, 0.65, 0.50},
			MillingScore:         60,
			MaxEnvelope:          700,
			MaxAspect:            30,
			MoldingQuantity:      1000,
			MoldingMaxDimension:  500,
			RotationalDimTol:     0.05,
			RotationalAlignment:  0.98,
			RotationalBins:       36,
			RotationalMinBins:    12,
			RotationalAreaShare:  0.5,
			RotationalMaxCV:      0.1,
			PrismaticBalance:     0.3,
			SheetThicknessMin:    0.5,
			SheetThicknessMax:    6,
			SheetThicknessLimit:  10,
			FlatNormalDot:        0.95,
			TieBreakConfidence:   0.50,
			RemoteHintConfidence: 0.90,
		},
		SheetMetal: SheetMetalThresholds{
			BendBands:           []int{50, 200, 1000, 5000},
			BendCounts:          []int{0, 2, 4, 8, 12},
			VarietyTriangles:    1000,
			FlatShare:           0.9,
			WaterjetThickness:   25,
			PlasmaThickness:     12,
			PunchThickness:      3,
			PunchMinHoles:       4,
			PunchCurvedCutMax:   300,
			EnclosureEfficiency: 0.1,
			HemTriangles:        2000,
			LouverTriangles:     4000,
			EmbossTriangles:     3000,
			LanceTriangles:      6000,
		},
		DFM: DFMThresholds{
			ThinWallCritical:    0.5,
			ThinWallWarning:     1.0,
			PocketRatioWarning:  4,
			PocketRatioCritical: 6,
			HoleRatioWarning:    6,
			HoleRatioCritical:   10,
			SmallHoleDiameter:   1.0,
			OversizeEnvelope:    700,
		},
		Tolerance: ToleranceThresholds{
			Classes: map[ToleranceClass]ToleranceStep{
				ToleranceStandard:  {Process: "standard-cnc", Capability: 0.05, BasePct: 0, Factor: 1},
				TolerancePrecision: {Process: "precision-cnc", Capability: 0.025, BasePct: 15, Factor: 1.5},
				ToleranceTight:     {Process: "cnc-grinding-edm", Capability: 0.008, BasePct: 25, Factor: 2},
			},
			CriticalStack: 0.15,
			MinChain:      2,
			MaxChain:      10,
			ComplexChain:  5,
		},
		Pricing: PricingThresholds{
			OverheadRate:         0.10,
			MarginRate:           0.08,
			InspectionBase:       5.0,
			InspectionPerFeature: 0.2,
			InspectionFactor: map[ToleranceClass]float64{
				ToleranceStandard:  1,
				TolerancePrecision: 1.5,
				ToleranceTight:     2.5,
			},
			DiscountSteps: []DiscountStep{
				{Quantity: 100, Percent: 0.25},
				{Quantity: 50, Percent: 0.20},
				{Quantity: 25, Percent: 0.15},
				{Quantity: 10, Percent: 0.10},
				{Quantity: 5, Percent: 0.05},
			},
			ToleranceUpcharge: map[ToleranceClass]float64{
				ToleranceStandard:  0,
				TolerancePrecision: 0.15,
				ToleranceTight:     0.25,
			},
			LeadTimeMultiplier: map[LeadTime]float64{
				LeadTimeEconomy:   0.90,
				LeadTimeStandard:  1.00,
				LeadTimeExpedited: 1.35,
			},
		},
	}
}

// Cluster returns the region-growing parameters for a kind, falling back to
// a conservative default for kinds missing from a loaded table.
func (t Thresholds) Cluster(kind FeatureKind) ClusterParams {
	if p, ok := t.Clusters[kind]; ok && p.Radius > 0 && p.MinSize > 0 {
		return p
	}
	if p, ok := DefaultThresholds().Clusters[kind]; ok {
		return p
	}
	return ClusterParams{Radius: 5, MinSize: 5}
}

// Step returns the ladder rung of a class, filling gaps in a loaded table
// from the built-in ladder. Unknown classes get the standard rung and false.
func (t ToleranceThresholds) Step(class ToleranceClass) (ToleranceStep, bool) {
	def := DefaultThresholds().Tolerance.Classes
	lookup := func(c ToleranceClass) (ToleranceStep, bool) {
		if s, ok := t.Classes[c]; ok && s.Capability > 0 {
			return s, true
		}
		s, ok := def[c]
		return s, ok
	}
	if s, ok := lookup(class); ok {
		return s, true
	}
	s, _ := lookup(ToleranceStandard)
	return s, false
}

// Discount returns the fractional discount of the largest step qty reaches.
func (p PricingThresholds) Discount(qty int) float64 {
	best, reached := 0.0, 0
	for _, s := range p.DiscountSteps {
		if qty >= s.Quantity && s.Quantity >= reached {
			best, reached = s.Percent, s.Quantity
		}
	}
	return best
}

// Upcharge returns the fractional upcharge of a tolerance class.
func (p PricingThresholds) Upcharge(t ToleranceClass) float64 {
	return p.ToleranceUpcharge[t]
}

// Inspection returns the inspection cost multiplier of a tolerance class.
func (p PricingThresholds) Inspection(t ToleranceClass) float64 {
	if f, ok := p.InspectionFactor[t]; ok && f > 0 {
		return f
	}
	return 1
}

// LeadTimeFactor returns the final price multiplier of a lead time.
func (p PricingThresholds) LeadTimeFactor(l LeadTime) float64 {
	if f, ok := p.LeadTimeMultiplier[l]; ok && f > 0 {
		return f
	}
	return 1
}
