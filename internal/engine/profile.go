package engine

import (
	"github.com/piwi3910/partquote/internal/analysis"
	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/importer"
	"github.com/piwi3910/partquote/internal/mesh"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/piwi3910/partquote/internal/process"
)

// FromProfile analyzes a flat profile as a sheet-metal blank of the
// requested gauge. Circular cutouts become holes.
func (e *Engine) FromProfile(p importer.Profile, opts AnalyzeOptions) *model.GeometryData {
	t := opts.Thickness
	if t <= 0 {
		t = DefaultProfileThickness
	}
	opts, mat := e.resolve(opts)
	th := e.cfg.Thresholds

	sum := model.GeometrySummary{
		Volume:      p.Area * t,
		SurfaceArea: 2*p.Area + p.CutLength*t,
		BoundingBox: model.NewBoundingBox(model.Point3D{}, model.Point3D{X: p.Length, Y: p.Width, Z: t}),
		Complexity:  profileComplexity(len(p.Cutouts)),
	}
	sum.MaterialWeight = mesh.Weight(sum.Volume, densityOr(mat, th.Mesh.DefaultDensity))

	fm := model.FeatureMap{}
	for _, d := range p.HoleDiameters {
		fm[model.KindHoles] = append(fm[model.KindHoles], model.FeatureLocation{
			Diameter:   d,
			Depth:      t,
			Confidence: 1,
		})
	}

	part := process.Part{
		Summary:  sum,
		Features: fm,
		Hints: process.Hints{
			Material: mat,
			Quantity: opts.Quantity,
			Sheet:    &process.SheetHint{IsSheetMetal: true, Thickness: t},
		},
	}
	part.Advanced = analysis.Aggregate(fm, boundsOf(sum.BoundingBox), th.Validation)

	g := &model.GeometryData{Name: opts.Name, Source: model.SourceProfile, GeometrySummary: sum}
	e.complete(g, part, opts, mat)
	if f := g.SheetMetalFeatures; f != nil {
		f.FlatPatternArea = p.Area
		f.CutLength = p.CutLength
	}
	return g
}

func profileComplexity(cutouts int) model.Complexity {
	switch {
	case cutouts > 16:
		return model.ComplexityComplex
	case cutouts > 4:
		return model.ComplexityModerate
	default:
		return model.ComplexitySimple
	}
}

func boundsOf(bb model.BoundingBox) geometry.Bounds {
	b := geometry.NewBounds()
	b.Extend(geometry.FromPoint(bb.Min))
	b.Extend(geometry.FromPoint(bb.Max))
	return b
}
