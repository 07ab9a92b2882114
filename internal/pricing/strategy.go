// Package pricing turns an analyzed part into an itemized price.
package pricing

import (
	"math"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/piwi3910/partquote/internal/nesting"
)

// Job is everything a strategy prices.
type Job struct {
	Geometry  *model.GeometryData
	Material  model.Material
	Rate      model.ProcessRate
	Quantity  int
	Tolerance model.ToleranceClass

	WastePercent   float64
	StockAllowance float64
	Sheet          model.StockSheet
	Nester         *nesting.Nester
}

// Adjustments are process-specific surcharges in percent of direct cost.
type Adjustments struct {
	ComplexityPercent float64
	RiskPercent       float64
	Notes             []string
}

// Strategy prices one process. All costs are per unit.
type Strategy interface {
	Process() model.Process
	MaterialCost(j *Job) float64
	LaborCost(j *Job) float64
	SetupCost(j *Job) float64
	ToolingCost(j *Job, labor float64) float64
	ProcessAdjustments(j *Job) Adjustments
}

// StrategyFor returns the strategy of a process. Processes without their own
// cost model are priced as milling.
func StrategyFor(p model.Process) Strategy {
	switch p {
	case model.ProcessTurning:
		return turning{}
	case model.ProcessSheetMetal:
		return sheetMetal{}
	default:
		return milling{}
	}
}

// complexityMultiplier scales machine time by geometric complexity.
func complexityMultiplier(c model.Complexity) float64 {
	switch c {
	case model.ComplexityModerate:
		return 1.3
	case model.ComplexityComplex:
		return 1.7
	default:
		return 1.0
	}
}

// setupStep is the economy of scale on per-job setup.
func setupStep(qty int) float64 {
	switch {
	case qty >= 100:
		return 0.7
	case qty >= 50:
		return 0.8
	case qty >= 10:
		return 0.9
	default:
		return 1.0
	}
}

func amortizedSetup(base float64, qty int) float64 {
	if qty < 1 {
		qty = 1
	}
	return base / float64(qty) * setupStep(qty)
}

// massCost converts a stock volume in mm³ to cost.
func massCost(volumeMM3 float64, m model.Material) float64 {
	kg := volumeMM3 / 1000 * m.Density / 1000
	return kg * m.CostPerKg
}

func machinability(m model.Material) float64 {
	if m.Machinability <= 0 {
		return 1
	}
	return m.Machinability
}

// riskFromIssues adds 2% per warning and 5% per critical DFM issue, capped
// at 15%.
func riskFromIssues(g *model.GeometryData) (float64, []string) {
	var pct float64
	var notes []string
	for _, issue := range g.DFMIssues {
		switch issue.Severity {
		case model.SeverityCritical:
			pct += 5
			notes = append(notes, "risk: "+issue.Message)
		case model.SeverityWarning:
			pct += 2
		}
	}
	return math.Min(15, pct), notes
}

var hardFeatures = []model.FeatureKind{
	model.KindThreads,
	model.KindUndercuts,
	model.KindToolAccessRestricted,
	model.KindThinWalls,
	model.KindComplexSurfaces,
	model.KindCounterbores,
	model.KindCountersinks,
}

type milling struct{}

func (milling) Process() model.Process { return model.ProcessMilling }

// MaterialCost prices a rectangular block with a machining allowance on
// every dimension. Waste grows with the volume cut away.
func (milling) MaterialCost(j *Job) float64 {
	bb := j.Geometry.BoundingBox
	a := j.StockAllowance
	block := (bb.X + a) * (bb.Y + a) * (bb.Z + a)
	fill := 1.0
	if v := bb.Volume(); v > 0 {
		fill = math.Min(1, j.Geometry.Volume/v)
	}
	waste := 1 + j.WastePercent/100 + 0.2*(1-fill)
	return massCost(block, j.Material) * waste
}

func (milling) LaborCost(j *Job) float64 {
	hours := j.Geometry.EstimatedMachiningTime / 60
	return hours * complexityMultiplier(j.Geometry.Complexity) * j.Rate.Factor * j.Rate.HourlyRate / machinability(j.Material)
}

func (milling) SetupCost(j *Job) float64 {
	return amortizedSetup(j.Rate.SetupCost, j.Quantity)
}

func (milling) ToolingCost(j *Job, labor float64) float64 {
	var hard int
	for _, k := range hardFeatures {
		if j.Geometry.FeatureMap.Has(k) {
			hard++
		}
	}
	pct := 0.10 + math.Min(0.30, 0.05*float64(hard))
	if j.Material.IsHard() {
		pct *= 1.25
	}
	return labor * pct
}

func (milling) ProcessAdjustments(j *Job) Adjustments {
	adj := Adjustments{ComplexityPercent: []float64{0, 5, 12}[j.Geometry.Complexity.Level()]}
	adj.RiskPercent, adj.Notes = riskFromIssues(j.Geometry)
	return adj
}

type turning struct{}

func (turning) Process() model.Process { return model.ProcessTurning }

// MaterialCost prices round bar: the second largest dimension is the
// diameter and the largest the length.
func (turning) MaterialCost(j *Job) float64 {
	dims := j.Geometry.BoundingBox.Sorted()
	d := dims[1] + j.StockAllowance
	l := dims[2] + 5
	bar := math.Pi / 4 * d * d * l
	fill := 1.0
	if bar > 0 {
		fill = math.Min(1, j.Geometry.Volume/bar)
	}
	waste := 1 + j.WastePercent/100 + 0.1*(1-fill)
	return massCost(bar, j.Material) * waste
}

func (turning) LaborCost(j *Job) float64 {
	hours := j.Geometry.EstimatedMachiningTime / 60
	return hours * complexityMultiplier(j.Geometry.Complexity) * j.Rate.Factor * j.Rate.HourlyRate / machinability(j.Material)
}

func (turning) SetupCost(j *Job) float64 {
	return amortizedSetup(j.Rate.SetupCost, j.Quantity)
}

func (turning) ToolingCost(j *Job, labor float64) float64 {
	pct := 0.08
	if j.Geometry.FeatureMap.Has(model.KindThreads) {
		pct += 0.05
	}
	if j.Material.IsHard() {
		pct *= 1.25
	}
	return labor * pct
}

func (turning) ProcessAdjustments(j *Job) Adjustments {
	adj := Adjustments{ComplexityPercent: []float64{0, 4, 10}[j.Geometry.Complexity.Level()]}
	adj.RiskPercent, adj.Notes = riskFromIssues(j.Geometry)
	if !j.Geometry.PartCharacteristics.IsRotational {
		adj.RiskPercent += 10
		adj.Notes = append(adj.Notes, "risk: part is not rotationally symmetric")
	}
	return adj
}

// Sheet-metal cutting speeds in mm/min by method.
var cutSpeed = map[string]float64{
	model.CutLaser:       4000,
	model.CutPlasma:      2500,
	model.CutWaterjet:    500,
	model.CutTurretPunch: 6000,
	model.CutCombined:    5000,
}

type sheetMetal struct{}

func (sheetMetal) Process() model.Process { return model.ProcessSheetMetal }

// features returns the sheet-metal estimate, synthesizing a flat blank from
// the bounding box when the part was never estimated as sheet metal.
func (sheetMetal) features(j *Job) *model.SheetMetalFeatures {
	if f := j.Geometry.SheetMetalFeatures; f != nil {
		return f
	}
	dims := j.Geometry.BoundingBox.Sorted()
	return &model.SheetMetalFeatures{
		Thickness:       dims[0],
		Width:           dims[1],
		Length:          dims[2],
		CutLength:       2 * (dims[1] + dims[2]),
		FlatPatternArea: dims[1] * dims[2],
		CuttingMethod:   model.CutLaser,
	}
}

// blank returns the developed blank size.
func (s sheetMetal) blank(j *Job) (w, l float64) {
	f := s.features(j)
	w, l = f.Width, f.Length
	if w > 0 && f.FlatPatternArea > w*l {
		l = f.FlatPatternArea / w
	}
	return w, l
}

// Utilization nests one full sheet of the blank. The result does not depend
// on quantity.
func (s sheetMetal) Utilization(j *Job) (partsPerSheet int, utilization float64) {
	if j.Nester == nil {
		return 0, 0
	}
	w, l := s.blank(j)
	return j.Nester.PartsPerSheet(w, l, j.Sheet)
}

// MaterialCost prices the developed blank; waste is the inverse of nesting
// utilization on one sheet, clamped to [1.05, 2].
func (s sheetMetal) MaterialCost(j *Job) float64 {
	f := s.features(j)
	w, l := s.blank(j)
	waste := 2.0
	if _, u := s.Utilization(j); u > 0 {
		waste = math.Max(1.05, math.Min(2.0, 1/u))
	}
	return massCost(w*l*f.Thickness, j.Material) * waste
}

func (s sheetMetal) LaborCost(j *Job) float64 {
	f := s.features(j)
	speed := cutSpeed[f.CuttingMethod]
	if speed == 0 {
		speed = cutSpeed[model.CutLaser]
	}
	minutes := 2 + f.CutLength/speed + 0.5*float64(f.BendCount) + 0.1*float64(f.HoleCount)
	minutes += 0.75 * float64(f.Hems+f.Louvers+f.Embossments+f.Lances)
	return minutes / 60 * complexityMultiplier(f.Complexity) * j.Rate.Factor * j.Rate.HourlyRate
}

func (s sheetMetal) SetupCost(j *Job) float64 {
	f := s.features(j)
	return amortizedSetup(j.Rate.SetupCost+5*float64(f.BendCount), j.Quantity)
}

func (s sheetMetal) ToolingCost(j *Job, labor float64) float64 {
	f := s.features(j)
	pct := 0.05
	if f.CuttingMethod == model.CutTurretPunch || f.CuttingMethod == model.CutCombined {
		pct += 0.10
	}
	pct += math.Min(0.15, 0.02*float64(f.Hems+f.Louvers+f.Embossments+f.Lances))
	return labor * pct
}

func (s sheetMetal) ProcessAdjustments(j *Job) Adjustments {
	f := s.features(j)
	adj := Adjustments{ComplexityPercent: []float64{0, 3, 8}[f.Complexity.Level()]}
	adj.RiskPercent, adj.Notes = riskFromIssues(j.Geometry)
	if f.SmallHoleCount > 0 {
		adj.RiskPercent += 3
	}
	return adj
}
