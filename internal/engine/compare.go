package engine

import (
	"fmt"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/piwi3910/partquote/internal/pricing"
)

// CompareProcesses prices the same request under each process, in the given
// order, so the alternatives can be shown side by side. Without processes it
// compares milling, turning and sheet metal. Pricing stops at the first
// error and returns the comparisons made so far.
func (e *Engine) CompareProcesses(in model.PricingInput, processes []model.Process) ([]model.ProcessComparison, error) {
	if in.Geometry == nil {
		return nil, fmt.Errorf("comparing processes: %w", pricing.ErrNoGeometry)
	}
	if len(processes) == 0 {
		processes = DefaultComparisonProcesses
	}

	results := make([]model.ProcessComparison, 0, len(processes))
	for _, p := range processes {
		req := in
		req.Process = p
		b, err := e.calc.Calculate(req)
		if err != nil {
			return results, fmt.Errorf("pricing %s: %w", p, err)
		}
		results = append(results, model.ProcessComparison{
			Process:             p,
			UnitPrice:           b.UnitPrice,
			TotalPrice:          b.TotalPrice,
			LeadTimeDays:        b.LeadTimeDays.TotalDays,
			RequiresManualQuote: b.RequiresManualQuote,
			Recommended:         p == in.Geometry.RecommendedProcess,
		})
	}
	return results, nil
}

// DefaultComparisonProcesses are the processes with their own cost model.
var DefaultComparisonProcesses = []model.Process{
	model.ProcessMilling,
	model.ProcessTurning,
	model.ProcessSheetMetal,
}

// Cheapest returns the lowest unit price among comparisons that need no
// manual review, or false when there is none.
func Cheapest(results []model.ProcessComparison) (model.ProcessComparison, bool) {
	var best model.ProcessComparison
	found := false
	for _, r := range results {
		if r.RequiresManualQuote {
			continue
		}
		if !found || r.UnitPrice < best.UnitPrice {
			best, found = r, true
		}
	}
	return best, found
}
