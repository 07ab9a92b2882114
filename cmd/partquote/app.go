package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/piwi3910/partquote/internal/engine"
	"github.com/piwi3910/partquote/internal/logging"
	"github.com/piwi3910/partquote/internal/metrics"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/piwi3910/partquote/internal/project"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is the per-invocation wiring shared by the subcommands.
type app struct {
	cfg         model.AppConfig
	cat         model.Catalog
	configPath  string
	catalogPath string
	log         *zap.Logger
	registry    *prometheus.Registry
	engine      *engine.Engine

	mu sync.Mutex // serializes config and history writes
}

func newApp() (*app, error) {
	a := &app{configPath: effectiveConfigPath(), catalogPath: effectiveCatalogPath()}

	cfg, err := project.LoadEffectiveConfig(a.configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = strings.ToLower(logLevel)
	}
	a.cfg = cfg

	a.cat, err = project.LoadCatalog(a.catalogPath)
	if err != nil {
		return nil, err
	}

	a.log, err = logging.NewLogger(logging.FromModel(cfg.Log))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a.registry = prometheus.NewRegistry()
	a.engine = engine.New(cfg, a.cat,
		engine.WithLogger(a.log),
		engine.WithMetrics(metrics.New(a.registry)),
	)
	return a, nil
}

func effectiveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return project.DefaultConfigPath()
}

func effectiveCatalogPath() string {
	if catalogPath != "" {
		return catalogPath
	}
	return project.DefaultCatalogPath()
}

func (a *app) close() {
	_ = a.log.Sync()
}

// remember records a quoted file in the stored recent list and the quote
// history. Failures are logged; they never fail the command.
func (a *app) remember(file string, b *model.PricingBreakdown) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if abs, err := filepath.Abs(file); err == nil {
		stored, err := project.LoadAppConfig(a.configPath)
		if err == nil {
			stored.AddRecentFile(abs)
			err = project.SaveAppConfig(a.configPath, stored)
		}
		if err != nil {
			a.log.Warn("failed to update recent files", zap.Error(err))
		}
	}
	if b == nil {
		return
	}
	if err := project.AppendHistory(project.DefaultHistoryPath(), project.NewHistoryEntry(file, b)); err != nil {
		a.log.Warn("failed to record quote history", zap.Error(err))
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// quoteFlags are the pricing options shared by price, matrix, compare and watch.
type quoteFlags struct {
	material  string
	finish    string
	quantity  int
	tolerance string
	leadTime  string
	process   string
	preset    string
	thickness float64
}

func (q *quoteFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&q.material, "material", "m", "", "Material code (default from config)")
	f.StringVarP(&q.finish, "finish", "f", "", "Finish code (default from config)")
	f.IntVarP(&q.quantity, "qty", "q", 0, "Quantity (default from config)")
	f.StringVarP(&q.tolerance, "tolerance", "t", "", "Tolerance class: standard, precision, tight")
	f.StringVarP(&q.leadTime, "lead-time", "l", "", "Lead time: economy, standard, expedited")
	f.StringVarP(&q.process, "process", "p", "", "Force a process instead of the recommendation")
	f.StringVar(&q.preset, "preset", "", "Apply a saved quote preset")
	f.Float64Var(&q.thickness, "thickness", 0, "Gauge in mm for DXF profiles")
}

// input builds a pricing request; flags win over the preset, and the preset
// wins over config defaults.
func (q *quoteFlags) input(a *app, g *model.GeometryData) (model.PricingInput, error) {
	in := model.PricingInput{
		Geometry:     g,
		MaterialCode: q.material,
		FinishCode:   q.finish,
		Quantity:     q.quantity,
	}
	if q.tolerance != "" {
		t, ok := model.ParseToleranceClass(strings.ToLower(q.tolerance))
		if !ok {
			return in, fmt.Errorf("unknown tolerance class %q", q.tolerance)
		}
		in.Tolerance = t
	}
	if q.leadTime != "" {
		l, ok := model.ParseLeadTime(strings.ToLower(q.leadTime))
		if !ok {
			return in, fmt.Errorf("unknown lead time %q", q.leadTime)
		}
		in.LeadTime = l
	}
	if q.process != "" {
		p, ok := model.ParseProcess(strings.ToLower(q.process))
		if !ok {
			return in, fmt.Errorf("unknown process %q", q.process)
		}
		in.Process = p
	}
	if q.preset != "" {
		presets, err := project.LoadPresets(project.DefaultPresetsPath())
		if err != nil {
			return in, err
		}
		p, ok := project.FindPreset(presets, q.preset)
		if !ok {
			return in, fmt.Errorf("preset %q not found", q.preset)
		}
		p.Apply(&in)
	}
	a.cfg.ApplyDefaults(&in)
	return in, nil
}

func (q *quoteFlags) analyzeOptions() engine.AnalyzeOptions {
	opts := engine.AnalyzeOptions{
		Material:  q.material,
		Finish:    q.finish,
		Quantity:  q.quantity,
		Thickness: q.thickness,
	}
	if t, ok := model.ParseToleranceClass(strings.ToLower(q.tolerance)); ok {
		opts.Tolerance = t
	}
	return opts
}

func money(cfg model.AppConfig, v float64) string {
	return fmt.Sprintf("%s %.2f", cfg.Currency, v)
}
