package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/piwi3910/partquote/internal/nesting"
	"go.uber.org/zap"
)

// ErrNoGeometry is returned for a pricing request without geometry.
var ErrNoGeometry = errors.New("pricing input has no geometry")

// VolumeDiscount returns the fractional discount for a quantity under the
// built-in rates.
func VolumeDiscount(qty int) float64 {
	return model.DefaultThresholds().Pricing.Discount(qty)
}

// ToleranceUpcharge returns the fractional upcharge of a tolerance class
// under the built-in rates.
func ToleranceUpcharge(t model.ToleranceClass) float64 {
	return model.DefaultThresholds().Pricing.Upcharge(t)
}

// LeadTimeMultiplier returns the final price multiplier of a lead time under
// the built-in rates.
func LeadTimeMultiplier(l model.LeadTime) float64 {
	return model.DefaultThresholds().Pricing.LeadTimeFactor(l)
}

// Calculator composes strategy costs into an itemized breakdown.
type Calculator struct {
	catalog model.Catalog
	cfg     model.AppConfig
	nester  *nesting.Nester
	cache   *Cache
	log     *zap.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithCache enables result caching.
func WithCache(c *Cache) Option {
	return func(calc *Calculator) { calc.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(calc *Calculator) { calc.log = l }
}

// NewCalculator creates a calculator over a catalog and the pricing factors
// of cfg.
func NewCalculator(catalog model.Catalog, cfg model.AppConfig, opts ...Option) *Calculator {
	c := &Calculator{
		catalog: catalog,
		cfg:     cfg,
		nester:  nesting.New(nesting.Settings{Kerf: cfg.NestingKerf, EdgeTrim: cfg.NestingTrim}),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Cache returns the calculator's cache, nil when caching is off.
func (c *Calculator) Cache() *Cache { return c.cache }

// Calculate prices one request. Empty request fields take the configured
// defaults, a quantity below one is priced as one, and an unknown material
// falls back to the default material with a note.
func (c *Calculator) Calculate(in model.PricingInput) (*model.PricingBreakdown, error) {
	if in.Geometry == nil {
		return nil, ErrNoGeometry
	}
	c.cfg.ApplyDefaults(&in)
	if in.Quantity < 1 {
		in.Quantity = 1
	}
	var notes []string

	mat := c.catalog.FindMaterial(in.MaterialCode)
	if mat == nil {
		c.log.Warn("unknown material, using default",
			zap.String("material", in.MaterialCode),
			zap.String("default", c.cfg.DefaultMaterial))
		notes = append(notes, fmt.Sprintf("material %q not in catalog, priced as %s", in.MaterialCode, c.cfg.DefaultMaterial))
		if mat = c.catalog.FindMaterial(c.cfg.DefaultMaterial); mat == nil {
			return nil, fmt.Errorf("default material %q missing from catalog", c.cfg.DefaultMaterial)
		}
	}

	proc := in.Process
	if proc == "" {
		proc = in.Geometry.RecommendedProcess
	}
	if proc == "" {
		proc = model.ProcessMilling
	}

	// Keyed on the requested code so a fallback's note stays with its request.
	key := Fingerprint(in.Geometry, proc, in.MaterialCode, in.FinishCode, in.Quantity, in.Tolerance, in.LeadTime)
	if b, ok := c.cache.Get(key); ok {
		return b, nil
	}

	b := c.compute(in, proc, *mat, notes)
	c.cache.Put(key, b)
	return b, nil
}

func (c *Calculator) compute(in model.PricingInput, proc model.Process, mat model.Material, notes []string) *model.PricingBreakdown {
	rates := c.cfg.Thresholds.Pricing
	g := in.Geometry
	strat := StrategyFor(proc)
	job := &Job{
		Geometry:       g,
		Material:       mat,
		Rate:           c.catalog.Rate(strat.Process()),
		Quantity:       in.Quantity,
		Tolerance:      in.Tolerance,
		WastePercent:   c.cfg.WastePercent,
		StockAllowance: c.cfg.StockAllowance,
		Sheet:          c.catalog.PrimarySheet(),
		Nester:         c.nester,
	}

	b := &model.PricingBreakdown{
		QuoteID:   uuid.NewString(),
		Process:   proc,
		Material:  mat.Code,
		Finish:    in.FinishCode,
		Quantity:  in.Quantity,
		Tolerance: string(in.Tolerance),
		LeadTime:  in.LeadTime,
	}

	b.MaterialCost = strat.MaterialCost(job)
	b.LaborCost = strat.LaborCost(job)
	b.SetupCost = strat.SetupCost(job)
	b.ToolingCost = strat.ToolingCost(job, b.LaborCost)

	finish := c.catalog.FindFinish(in.FinishCode)
	if finish == nil && in.FinishCode != "" {
		notes = append(notes, fmt.Sprintf("finish %q not in catalog, priced as-machined", in.FinishCode))
	}
	if finish != nil {
		b.FinishCost = finish.BaseCost + finish.CostPerCm2*g.SurfaceArea/100
	}

	features := math.Min(50, float64(g.FeatureMap.Total()))
	b.InspectionCost = (rates.InspectionBase + rates.InspectionPerFeature*features) * rates.Inspection(in.Tolerance)

	b.DirectCost = b.MaterialCost + b.LaborCost + b.SetupCost + b.ToolingCost + b.FinishCost + b.InspectionCost
	b.Overhead = b.DirectCost * rates.OverheadRate

	adj := strat.ProcessAdjustments(job)
	b.ComplexityAdjustment = b.DirectCost * adj.ComplexityPercent / 100
	b.RiskAdjustment = b.DirectCost * adj.RiskPercent / 100
	notes = append(notes, adj.Notes...)

	b.Margin = (b.DirectCost + b.ComplexityAdjustment + b.Overhead + b.RiskAdjustment) * rates.MarginRate
	b.Subtotal = b.DirectCost + b.ComplexityAdjustment + b.Overhead + b.RiskAdjustment + b.Margin

	b.VolumeDiscount = b.Subtotal * rates.Discount(in.Quantity)
	afterDiscount := b.Subtotal - b.VolumeDiscount
	b.ToleranceUpcharge = afterDiscount * rates.Upcharge(in.Tolerance)
	b.LeadTimeMultiplier = rates.LeadTimeFactor(in.LeadTime)
	b.UnitPrice = roundCents((afterDiscount + b.ToleranceUpcharge) * b.LeadTimeMultiplier)
	b.TotalPrice = roundCents(b.UnitPrice * float64(in.Quantity))

	if proc == model.ProcessSheetMetal {
		sm := sheetMetal{}
		w, l := sm.blank(job)
		pps, _ := sm.Utilization(job)
		purchase := model.CalculateSheetPurchase(w, l, c.cfg.NestingKerf, job.Sheet, pps, in.Quantity, c.cfg.WastePercent)
		b.SheetsRequired = purchase.SheetsRequired
	}

	switch proc {
	case model.ProcessManualQuote:
		b.RequiresManualQuote = true
		b.ManualQuoteReason = manualReason(g)
		notes = append(notes, "indicative price from the milling model")
	case model.ProcessInjectionMolding:
		b.RequiresManualQuote = true
		b.ManualQuoteReason = "injection molding requires mold tooling review"
		notes = append(notes, "indicative price from the milling model")
	}

	b.LeadTimeDays = c.leadTime(g, proc, finish, in)
	b.Notes = notes
	return b
}

func manualReason(g *model.GeometryData) string {
	if len(g.ProcessReasoning) > 0 {
		return g.ProcessReasoning[0]
	}
	return "geometry is outside the automated quoting envelope"
}

// leadTime estimates working days. Economy stretches production by half,
// expedited halves it.
func (c *Calculator) leadTime(g *model.GeometryData, proc model.Process, finish *model.Finish, in model.PricingInput) model.LeadTimeBreakdown {
	base := 3.0
	if proc == model.ProcessSheetMetal {
		base = 2
	}
	hours := g.EstimatedMachiningTime / 60 * float64(in.Quantity)
	production := base + math.Ceil(hours/8)
	switch in.LeadTime {
	case model.LeadTimeEconomy:
		production = math.Ceil(production * 1.5)
	case model.LeadTimeExpedited:
		production = math.Max(1, math.Ceil(production/2))
	}

	lt := model.LeadTimeBreakdown{ProductionDays: int(production), InspectionDays: 1}
	if finish != nil {
		lt.FinishingDays = finish.LeadDays
	}
	if in.Tolerance == model.ToleranceTight {
		lt.InspectionDays = 2
	}
	lt.TotalDays = lt.ProductionDays + lt.FinishingDays + lt.InspectionDays
	return lt
}

// PriceMatrix prices the same request at each quantity. Without quantities
// the default ladder is used.
func (c *Calculator) PriceMatrix(in model.PricingInput, quantities []int) ([]model.PriceMatrixEntry, error) {
	if len(quantities) == 0 {
		quantities = model.DefaultMatrixQuantities
	}
	out := make([]model.PriceMatrixEntry, 0, len(quantities))
	for _, q := range quantities {
		req := in
		req.Quantity = q
		b, err := c.Calculate(req)
		if err != nil {
			return nil, fmt.Errorf("pricing quantity %d: %w", q, err)
		}
		out = append(out, model.PriceMatrixEntry{
			Quantity:     b.Quantity,
			PricePerUnit: b.UnitPrice,
			TotalPrice:   b.TotalPrice,
		})
	}
	return out, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
