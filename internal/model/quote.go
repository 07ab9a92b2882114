package model

// LeadTime is the requested delivery speed.
type LeadTime string

const (
	LeadTimeEconomy   LeadTime = "economy"
	LeadTimeStandard  LeadTime = "standard"
	LeadTimeExpedited LeadTime = "expedited"
)

// ParseLeadTime accepts a lead time name; empty means standard.
func ParseLeadTime(s string) (LeadTime, bool) {
	switch s {
	case "", "standard":
		return LeadTimeStandard, true
	case "economy":
		return LeadTimeEconomy, true
	case "expedited", "rush":
		return LeadTimeExpedited, true
	}
	return "", false
}

// PricingInput is one pricing request.
type PricingInput struct {
	Geometry     *GeometryData  `json:"geometry"`
	MaterialCode string         `json:"material"`
	Process      Process        `json:"process,omitempty"` // empty: use the recommended process
	FinishCode   string         `json:"finish"`
	Quantity     int            `json:"quantity"`
	Tolerance    ToleranceClass `json:"tolerance"`
	LeadTime     LeadTime       `json:"lead_time"`
}

// LeadTimeBreakdown splits the delivery estimate in working days.
type LeadTimeBreakdown struct {
	ProductionDays int `json:"production_days"`
	FinishingDays  int `json:"finishing_days"`
	InspectionDays int `json:"inspection_days"`
	TotalDays      int `json:"total_days"`
}

// PricingBreakdown is an itemized quote. Cost components are per unit.
type PricingBreakdown struct {
	QuoteID   string   `json:"quote_id"`
	Process   Process  `json:"process"`
	Material  string   `json:"material"`
	Finish    string   `json:"finish"`
	Quantity  int      `json:"quantity"`
	Tolerance string   `json:"tolerance"`
	LeadTime  LeadTime `json:"lead_time"`

	MaterialCost   float64 `json:"material_cost"`
	LaborCost      float64 `json:"labor_cost"`
	SetupCost      float64 `json:"setup_cost"`
	ToolingCost    float64 `json:"tooling_cost"`
	FinishCost     float64 `json:"finish_cost"`
	InspectionCost float64 `json:"inspection_cost"`
	DirectCost     float64 `json:"direct_cost"`

	Overhead             float64 `json:"overhead"`
	ComplexityAdjustment float64 `json:"complexity_adjustment"`
	RiskAdjustment       float64 `json:"risk_adjustment"`
	Margin               float64 `json:"margin"`
	Subtotal             float64 `json:"subtotal"`

	VolumeDiscount     float64 `json:"volume_discount"`
	ToleranceUpcharge  float64 `json:"tolerance_upcharge"`
	LeadTimeMultiplier float64 `json:"lead_time_multiplier"`
	UnitPrice          float64 `json:"unit_price"`
	TotalPrice         float64 `json:"total_price"`

	LeadTimeDays        LeadTimeBreakdown `json:"lead_time_days"`
	SheetsRequired      int               `json:"sheets_required,omitempty"`
	RequiresManualQuote bool              `json:"requires_manual_quote"`
	ManualQuoteReason   string            `json:"manual_quote_reason,omitempty"`
	Notes               []string          `json:"notes,omitempty"`
}

// PriceMatrixEntry is one row of a quantity price matrix.
type PriceMatrixEntry struct {
	Quantity     int     `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
	TotalPrice   float64 `json:"total_price"`
}

// DefaultMatrixQuantities are the quantities quoted when none are given.
var DefaultMatrixQuantities = []int{1, 5, 10, 25, 50, 100}

// ProcessComparison summarizes one what-if pricing run.
type ProcessComparison struct {
	Process             Process `json:"process"`
	UnitPrice           float64 `json:"unit_price"`
	TotalPrice          float64 `json:"total_price"`
	LeadTimeDays        int     `json:"lead_time_days"`
	RequiresManualQuote bool    `json:"requires_manual_quote"`
	Recommended         bool    `json:"recommended"`
}

// QuoteRequest is one line of a batch quote sheet.
type QuoteRequest struct {
	File      string `json:"file"`
	Material  string `json:"material"`
	Quantity  int    `json:"quantity"`
	Finish    string `json:"finish"`
	Tolerance string `json:"tolerance"`
	LeadTime  string `json:"lead_time"`
	Process   string `json:"process,omitempty"`
}

// QuoteResult pairs an analyzed part with its price.
type QuoteResult struct {
	Request   QuoteRequest       `json:"request"`
	Geometry  *GeometryData      `json:"geometry"`
	Breakdown *PricingBreakdown  `json:"breakdown"`
	Matrix    []PriceMatrixEntry `json:"matrix,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// SheetMetalHint is a sheet-metal verdict supplied by an extraction service.
type SheetMetalHint struct {
	IsSheetMetal bool    `json:"is_sheet_metal"`
	Thickness    float64 `json:"thickness"` // mm, 0 when unknown
}

// RemoteSummary is a pre-computed geometry summary from an extraction
// service. Dimensions are the bounding box extents.
type RemoteSummary struct {
	Volume      float64         `json:"volume"`
	SurfaceArea float64         `json:"surface_area"`
	Dimensions  Point3D         `json:"dimensions"`
	SheetMetal  *SheetMetalHint `json:"sheet_metal,omitempty"`
}
