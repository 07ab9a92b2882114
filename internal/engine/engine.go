// Package engine is the entry point for collaborators: it turns mesh bytes,
// CAD files or remote summaries into analyzed geometry and prices it.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/piwi3910/partquote/internal/analysis"
	"github.com/piwi3910/partquote/internal/dfm"
	"github.com/piwi3910/partquote/internal/importer"
	"github.com/piwi3910/partquote/internal/mesh"
	"github.com/piwi3910/partquote/internal/metrics"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/piwi3910/partquote/internal/pricing"
	"github.com/piwi3910/partquote/internal/process"
	"github.com/piwi3910/partquote/internal/remote"
	"github.com/piwi3910/partquote/internal/tolerance"
	"go.uber.org/zap"
)

// DefaultProfileThickness is the gauge assumed for flat profiles when the
// caller gives none.
const DefaultProfileThickness = 2.0

// AnalyzeOptions carry the quote context that shapes analysis. Empty fields
// take the configured defaults.
type AnalyzeOptions struct {
	Name      string
	Material  string
	Finish    string
	Quantity  int
	Tolerance model.ToleranceClass
	Thickness float64 // mm, flat profiles only
}

// Engine runs the analysis pipeline and prices the result. It is safe for
// concurrent use.
type Engine struct {
	cfg        model.AppConfig
	catalog    model.Catalog
	classifier *process.Classifier
	sheets     *process.SheetEstimator
	calc       *pricing.Calculator
	remote     *remote.Client
	log        *zap.Logger
	metrics    *metrics.Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

// WithMetrics records analysis, pricing and cache metrics.
func WithMetrics(m *metrics.Recorder) Option { return func(e *Engine) { e.metrics = m } }

// WithRemote replaces the extraction client built from the config.
func WithRemote(c *remote.Client) Option { return func(e *Engine) { e.remote = c } }

// New creates an engine from the application config and shop catalog.
func New(cfg model.AppConfig, catalog model.Catalog, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		catalog:    catalog,
		classifier: process.NewClassifier(cfg.Thresholds.Classifier),
		sheets:     process.NewSheetEstimator(cfg.Thresholds.SheetMetal),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.remote == nil {
		e.remote = remote.New(cfg.Remote, remote.WithLogger(e.log), remote.WithMetrics(e.metrics))
	}

	var cache *pricing.Cache
	if cfg.CacheCapacity > 0 {
		var observer pricing.CacheObserver
		if e.metrics != nil {
			observer = e.metrics
		}
		cache = pricing.NewCache(cfg.CacheCapacity, observer)
	}
	e.calc = pricing.NewCalculator(catalog, cfg, pricing.WithCache(cache), pricing.WithLogger(e.log))
	return e
}

// Catalog returns the shop catalog.
func (e *Engine) Catalog() model.Catalog { return e.catalog }

// Config returns the application config.
func (e *Engine) Config() model.AppConfig { return e.cfg }

// AnalyzeMesh analyzes binary or text STL bytes with the configured defaults.
// A *mesh.ParseError is the only failure.
func (e *Engine) AnalyzeMesh(data []byte) (*model.GeometryData, error) {
	return e.AnalyzeMeshWith(data, AnalyzeOptions{})
}

// AnalyzeMeshWith analyzes STL bytes in the given quote context.
func (e *Engine) AnalyzeMeshWith(data []byte, opts AnalyzeOptions) (*model.GeometryData, error) {
	start := time.Now()
	m, err := mesh.Parse(data)
	if err != nil {
		e.metrics.RecordAnalysis(model.SourceMesh, err, time.Since(start))
		return nil, err
	}
	if opts.Name != "" {
		m.Name = opts.Name
	}
	g := e.analyzeParsed(m, opts)
	e.metrics.RecordAnalysis(model.SourceMesh, nil, time.Since(start))
	return g, nil
}

// AnalyzeFile analyzes a part file. STL is analyzed locally and DXF as a
// flat profile. Every other format goes to the extraction service; when that
// fails, STEP files fall back to a local text heuristic.
func (e *Engine) AnalyzeFile(ctx context.Context, path string, opts AnalyzeOptions) (*model.GeometryData, error) {
	if opts.Name == "" {
		opts.Name = filepath.Base(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return e.AnalyzeMeshWith(data, opts)
	case ".dxf":
		return e.analyzeProfile(path, opts)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return e.analyzeCAD(ctx, path, data, opts)
}

func (e *Engine) analyzeCAD(ctx context.Context, path string, data []byte, opts AnalyzeOptions) (*model.GeometryData, error) {
	start := time.Now()
	summary, err := e.remote.Extract(ctx, path, data)
	if err == nil {
		g, err := e.fromSummary(*summary, model.SourceRemote, opts)
		e.metrics.RecordAnalysis(model.SourceRemote, err, time.Since(start))
		return g, err
	}

	e.log.Warn("remote extraction unavailable, using local estimate",
		zap.String("file", path), zap.Error(err))

	est, herr := EstimateSTEP(data)
	if herr != nil {
		e.metrics.RecordAnalysis(model.SourceHeuristic, herr, time.Since(start))
		return nil, fmt.Errorf("analyzing %s: %w", filepath.Base(path), herr)
	}
	g, herr := e.fromSummary(est, model.SourceHeuristic, opts)
	if g != nil {
		g.Notes = append(g.Notes, "dimensions estimated from STEP coordinates; volume and area are approximations")
	}
	e.metrics.RecordAnalysis(model.SourceHeuristic, herr, time.Since(start))
	return g, herr
}

// AnalyzeSummary analyzes a geometry summary computed elsewhere.
func (e *Engine) AnalyzeSummary(s model.RemoteSummary, opts AnalyzeOptions) (*model.GeometryData, error) {
	start := time.Now()
	g, err := e.fromSummary(s, model.SourceRemote, opts)
	e.metrics.RecordAnalysis(model.SourceRemote, err, time.Since(start))
	return g, err
}

// AnalyzeToleranceFeasibility evaluates one tolerance class. material may be
// a catalog code or a free-form name.
func (e *Engine) AnalyzeToleranceFeasibility(g *model.GeometryData, class model.ToleranceClass, material string) model.ToleranceFeasibility {
	if m := e.catalog.FindMaterial(material); m != nil {
		material = m.Name
	}
	return tolerance.AnalyzeWith(g, class, material, e.cfg.Thresholds.Tolerance)
}

// CalculatePricing prices one request.
func (e *Engine) CalculatePricing(in model.PricingInput) (*model.PricingBreakdown, error) {
	b, err := e.calc.Calculate(in)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordQuote(b.Process)
	return b, nil
}

// CalculatePriceMatrix prices a request at each quantity.
func (e *Engine) CalculatePriceMatrix(in model.PricingInput, quantities []int) ([]model.PriceMatrixEntry, error) {
	return e.calc.PriceMatrix(in, quantities)
}

func (e *Engine) resolve(opts AnalyzeOptions) (AnalyzeOptions, *model.Material) {
	if opts.Material == "" {
		opts.Material = e.cfg.DefaultMaterial
	}
	if opts.Finish == "" {
		opts.Finish = e.cfg.DefaultFinish
	}
	if opts.Quantity < 1 {
		opts.Quantity = e.cfg.DefaultQuantity
	}
	if opts.Tolerance == "" {
		opts.Tolerance = e.cfg.DefaultTolerance
	}
	return opts, e.catalog.FindMaterial(opts.Material)
}

func density(m *model.Material) float64 {
	if m == nil {
		return 0
	}
	return m.Density
}

func (e *Engine) analyzeParsed(m *mesh.Mesh, opts AnalyzeOptions) *model.GeometryData {
	opts, mat := e.resolve(opts)
	th := e.cfg.Thresholds

	sum := mesh.Summarize(m, density(mat), th.Mesh)
	res := analysis.Analyze(m.Triangles, th)
	part := process.PartFromAnalysis(sum, res, process.Hints{Material: mat, Quantity: opts.Quantity})

	g := &model.GeometryData{Name: m.Name, Source: model.SourceMesh, GeometrySummary: sum}
	e.complete(g, part, opts, mat)
	e.log.Debug("mesh analyzed",
		zap.String("name", g.Name),
		zap.Int("triangles", sum.TriangleCount),
		zap.String("process", string(g.RecommendedProcess)),
		zap.Int("features", g.FeatureMap.Total()))
	return g
}

func (e *Engine) fromSummary(s model.RemoteSummary, source model.Source, opts AnalyzeOptions) (*model.GeometryData, error) {
	if s.Volume < 0 || s.SurfaceArea < 0 {
		return nil, fmt.Errorf("invalid geometry summary: negative volume or area")
	}
	opts, mat := e.resolve(opts)
	th := e.cfg.Thresholds.Mesh

	sum := model.GeometrySummary{
		Volume:      s.Volume,
		SurfaceArea: s.SurfaceArea,
		BoundingBox: model.NewBoundingBox(model.Point3D{}, s.Dimensions),
	}
	sum.Complexity = mesh.ClassifyComplexity(0, sum.SurfaceArea, sum.Volume, th)
	sum.MaterialWeight = mesh.Weight(sum.Volume, densityOr(mat, th.DefaultDensity))
	sum.EstimatedMachiningTime = mesh.MachiningTime(sum, th)

	hints := process.Hints{Material: mat, Quantity: opts.Quantity}
	if h := s.SheetMetal; h != nil {
		hints.Sheet = &process.SheetHint{IsSheetMetal: h.IsSheetMetal, Thickness: h.Thickness}
	}
	part := process.Part{Summary: sum, Features: model.FeatureMap{}, Hints: hints}
	part.Advanced = analysis.Aggregate(part.Features, boundsOf(sum.BoundingBox), e.cfg.Thresholds.Validation)

	g := &model.GeometryData{Name: opts.Name, Source: source, GeometrySummary: sum}
	e.complete(g, part, opts, mat)
	return g, nil
}

func densityOr(m *model.Material, fallback float64) float64 {
	if d := density(m); d > 0 {
		return d
	}
	return fallback
}

func (e *Engine) analyzeProfile(path string, opts AnalyzeOptions) (*model.GeometryData, error) {
	start := time.Now()
	res := importer.ImportProfile(path)
	if res.Profile == nil {
		err := fmt.Errorf("reading profile %s: %s", filepath.Base(path), strings.Join(res.Errors, "; "))
		e.metrics.RecordAnalysis(model.SourceProfile, err, time.Since(start))
		return nil, err
	}
	for _, w := range res.Warnings {
		e.log.Warn("profile import", zap.String("file", path), zap.String("warning", w))
	}
	g := e.FromProfile(*res.Profile, opts)
	e.metrics.RecordAnalysis(model.SourceProfile, nil, time.Since(start))
	return g, nil
}

// complete classifies the part and fills in the process-dependent results.
func (e *Engine) complete(g *model.GeometryData, part process.Part, opts AnalyzeOptions, mat *model.Material) {
	if part.Features == nil {
		part.Features = model.FeatureMap{}
	}
	g.FeatureMap = part.Features
	g.AdvancedFeatures = part.Advanced

	dec := e.classifier.Classify(part)
	g.SetRecommendation(dec.Recommendation)
	g.PartCharacteristics = dec.Characteristics
	if g.RecommendedProcess == model.ProcessSheetMetal {
		g.SheetMetalFeatures = e.sheets.Estimate(part, dec.Characteristics, opts.Tolerance)
		g.AdvancedFeatures.SheetFormingMethod = g.SheetMetalFeatures.BendingMethod
	}

	g.DFMIssues = dfm.Issues(g, e.cfg.Thresholds.DFM)
	g.SecondaryOps = dfm.SecondaryOps(g, dfm.Context{Material: mat, Finish: opts.Finish, Tolerance: opts.Tolerance})
	e.metrics.RecordGeometry(g)
}
