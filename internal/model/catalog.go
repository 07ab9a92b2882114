package model

import (
	"strings"

	"github.com/google/uuid"
)

// Material categories.
const (
	CategoryMetal   = "metal"
	CategoryPlastic = "plastic"
)

// Material is a stock material with its cost and machining properties.
type Material struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Density       float64 `json:"density"`       // g/cm³
	CostPerKg     float64 `json:"cost_per_kg"`   // currency per kg
	Machinability float64 `json:"machinability"` // 1.0 = free-machining aluminium
}

// NewMaterial creates a Material with a generated ID.
func NewMaterial(code, name, category string, density, costPerKg, machinability float64) Material {
	return Material{
		ID:            uuid.New().String()[:8],
		Code:          code,
		Name:          name,
		Category:      category,
		Density:       density,
		CostPerKg:     costPerKg,
		Machinability: machinability,
	}
}

// IsPlastic reports whether the material is a polymer.
func (m Material) IsPlastic() bool { return m.Category == CategoryPlastic }

// HardnessFactor scales tolerance cost add-ons by how hard the material is
// to hold to size.
func HardnessFactor(material string) float64 {
	name := strings.ToLower(material)
	switch {
	case strings.Contains(name, "titanium"), strings.Contains(name, "hardened"), strings.Contains(name, "ti6al4v"):
		return 1.5
	case strings.Contains(name, "stainless"), strings.Contains(name, "steel"):
		return 1.2
	case strings.Contains(name, "brass"), strings.Contains(name, "copper"):
		return 0.9
	case strings.Contains(name, "plastic"), strings.Contains(name, "abs"), strings.Contains(name, "nylon"),
		strings.Contains(name, "delrin"), strings.Contains(name, "pom"), strings.Contains(name, "polycarbonate"):
		return 1.3
	default:
		return 1.0
	}
}

// IsHard reports whether the material counts as hard to machine.
func (m Material) IsHard() bool { return HardnessFactor(m.Name) >= 1.2 && !m.IsPlastic() }

// Finish is a surface finish option.
type Finish struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	BaseCost   float64 `json:"base_cost"`    // per part
	CostPerCm2 float64 `json:"cost_per_cm2"` // per cm² of surface
	LeadDays   int     `json:"lead_days"`
}

// NewFinish creates a Finish with a generated ID.
func NewFinish(code, name string, baseCost, costPerCm2 float64, leadDays int) Finish {
	return Finish{
		ID:         uuid.New().String()[:8],
		Code:       code,
		Name:       name,
		BaseCost:   baseCost,
		CostPerCm2: costPerCm2,
		LeadDays:   leadDays,
	}
}

// ProcessRate holds the shop rates for one process.
type ProcessRate struct {
	Process    Process `json:"process"`
	HourlyRate float64 `json:"hourly_rate"`
	SetupCost  float64 `json:"setup_cost"` // per job
	Factor     float64 `json:"factor"`     // labor time factor relative to milling
}

// StockSheet is a standard sheet blank used for nesting sheet-metal parts.
type StockSheet struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Width  float64 `json:"width"`  // mm
	Length float64 `json:"length"` // mm
}

// NewStockSheet creates a StockSheet with a generated ID.
func NewStockSheet(name string, w, l float64) StockSheet {
	return StockSheet{
		ID:     uuid.New().String()[:8],
		Name:   name,
		Width:  w,
		Length: l,
	}
}

// Area returns the sheet area in mm².
func (s StockSheet) Area() float64 { return s.Width * s.Length }

// Catalog holds the shop's materials, finishes, process rates and sheet stock.
type Catalog struct {
	Materials []Material    `json:"materials"`
	Finishes  []Finish      `json:"finishes"`
	Processes []ProcessRate `json:"processes"`
	Sheets    []StockSheet  `json:"sheets"`
}

// DefaultMaterialCode is used when a request names an unknown material.
const DefaultMaterialCode = "AL6061"

// DefaultFinishCode is the no-finish option.
const DefaultFinishCode = "as-machined"

// DefaultCatalog returns a catalog populated with common defaults.
func DefaultCatalog() Catalog {
	return Catalog{
		Materials: []Material{
			NewMaterial("AL6061", "Aluminum 6061-T6", CategoryMetal, 2.70, 8.0, 1.0),
			NewMaterial("AL7075", "Aluminum 7075-T6", CategoryMetal, 2.81, 14.0, 0.9),
			NewMaterial("SS304", "Stainless Steel 304", CategoryMetal, 8.00, 12.0, 0.45),
			NewMaterial("SS316", "Stainless Steel 316", CategoryMetal, 8.00, 15.0, 0.4),
			NewMaterial("ST1018", "Mild Steel 1018", CategoryMetal, 7.87, 4.0, 0.7),
			NewMaterial("BR360", "Brass C360", CategoryMetal, 8.50, 16.0, 1.2),
			NewMaterial("CU101", "Copper C101", CategoryMetal, 8.94, 18.0, 0.7),
			NewMaterial("TI64", "Titanium Ti6Al4V", CategoryMetal, 4.43, 60.0, 0.25),
			NewMaterial("ABS", "ABS Plastic", CategoryPlastic, 1.05, 6.0, 1.5),
			NewMaterial("POM", "Delrin POM", CategoryPlastic, 1.41, 9.0, 1.6),
			NewMaterial("PA6", "Nylon PA6", CategoryPlastic, 1.14, 8.0, 1.3),
			NewMaterial("PC", "Polycarbonate", CategoryPlastic, 1.20, 10.0, 1.3),
		},
		Finishes: []Finish{
			NewFinish("as-machined", "As machined", 0, 0, 0),
			NewFinish("bead-blast", "Bead blast", 8, 0.02, 1),
			NewFinish("anodize", "Anodize type II", 15, 0.05, 3),
			NewFinish("hard-anodize", "Anodize type III (hard)", 30, 0.09, 5),
			NewFinish("powder-coat", "Powder coat", 20, 0.06, 4),
			NewFinish("passivate", "Passivation", 12, 0.03, 2),
			NewFinish("polish", "Polish", 10, 0.08, 2),
		},
		Processes: []ProcessRate{
			{Process: ProcessMilling, HourlyRate: 85, SetupCost: 75, Factor: 1.0},
			{Process: ProcessTurning, HourlyRate: 70, SetupCost: 50, Factor: 0.8},
			{Process: ProcessSheetMetal, HourlyRate: 60, SetupCost: 40, Factor: 0.6},
		},
		Sheets: []StockSheet{
			NewStockSheet("Sheet 2500x1250", 2500, 1250),
			NewStockSheet("Sheet 3000x1500", 3000, 1500),
			NewStockSheet("Sheet 2000x1000", 2000, 1000),
		},
	}
}

// FindMaterial returns the material with the given code or name
// (case-insensitive), or nil.
func (c *Catalog) FindMaterial(code string) *Material {
	for i := range c.Materials {
		if strings.EqualFold(c.Materials[i].Code, code) || strings.EqualFold(c.Materials[i].Name, code) {
			return &c.Materials[i]
		}
	}
	return nil
}

// FindFinish returns the finish with the given code, or nil.
func (c *Catalog) FindFinish(code string) *Finish {
	for i := range c.Finishes {
		if strings.EqualFold(c.Finishes[i].Code, code) {
			return &c.Finishes[i]
		}
	}
	return nil
}

// Rate returns the rates for a process. Processes without their own rates
// use the milling rates.
func (c *Catalog) Rate(p Process) ProcessRate {
	var fallback ProcessRate
	for _, r := range c.Processes {
		if r.Process == p {
			return r
		}
		if r.Process == ProcessMilling {
			fallback = r
		}
	}
	if fallback.Process == "" {
		fallback = ProcessRate{Process: ProcessMilling, HourlyRate: 85, SetupCost: 75, Factor: 1.0}
	}
	return fallback
}

// PrimarySheet returns the first sheet in the catalog, or a 2500x1250 default.
func (c *Catalog) PrimarySheet() StockSheet {
	if len(c.Sheets) > 0 {
		return c.Sheets[0]
	}
	return StockSheet{Name: "Sheet 2500x1250", Width: 2500, Length: 1250}
}

// MaterialCodes lists material codes for CLI help and validation.
func (c *Catalog) MaterialCodes() []string {
	codes := make([]string, len(c.Materials))
	for i, m := range c.Materials {
		codes[i] = m.Code
	}
	return codes
}

// FinishCodes lists finish codes.
func (c *Catalog) FinishCodes() []string {
	codes := make([]string, len(c.Finishes))
	for i, f := range c.Finishes {
		codes[i] = f.Code
	}
	return codes
}
