package export

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/importer"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// DXF layer names.
const (
	layerOutline = "OUTLINE"
	layerCutouts = "CUTOUTS"
)

// ErrNoFlatPattern is returned for parts without a sheet-metal estimate.
var ErrNoFlatPattern = errors.New("part has no sheet-metal flat pattern")

// Hole is a round cutout in a flat pattern.
type Hole struct {
	Center   geometry.Point2D `json:"center"`
	Diameter float64          `json:"diameter"`
}

// FlatPattern is the developed outline of a sheet-metal part in mm, with
// the origin at the lower-left corner.
type FlatPattern struct {
	Outline geometry.Outline   `json:"outline"`
	Cutouts []geometry.Outline `json:"cutouts,omitempty"`
	Holes   []Hole             `json:"holes,omitempty"`
}

// FlatPatternFromGeometry builds a rectangular blank from the sheet-metal
// estimate. Detected holes are projected onto the blank's two longest axes.
func FlatPatternFromGeometry(g *model.GeometryData) (FlatPattern, error) {
	if g == nil || g.SheetMetalFeatures == nil {
		return FlatPattern{}, ErrNoFlatPattern
	}
	f := g.SheetMetalFeatures
	w, l := f.Width, f.Length
	if w > 0 && f.FlatPatternArea > w*l {
		l = f.FlatPatternArea / w
	}
	if w <= 0 || l <= 0 {
		return FlatPattern{}, fmt.Errorf("flat pattern has no extent: %.2f x %.2f mm", w, l)
	}
	fp := FlatPattern{Outline: rectangle(w, l)}

	bb := g.BoundingBox
	major, minor := planeAxes(bb)
	for _, loc := range g.FeatureMap[model.KindHoles] {
		if loc.Diameter <= 0 {
			continue
		}
		c := geometry.Point2D{
			X: axisValue(loc.Centroid, minor) - axisValue(bb.Min, minor),
			Y: axisValue(loc.Centroid, major) - axisValue(bb.Min, major),
		}
		r := loc.Diameter / 2
		c.X = clamp(c.X, r, w-r)
		c.Y = clamp(c.Y, r, l-r)
		fp.Holes = append(fp.Holes, Hole{Center: c, Diameter: loc.Diameter})
	}
	return fp, nil
}

// FlatPatternFromProfile reuses an imported profile as its own flat pattern.
func FlatPatternFromProfile(p importer.Profile) FlatPattern {
	return FlatPattern{Outline: p.Outer, Cutouts: p.Cutouts}
}

// ExportFlatPatternDXF writes the outline on the OUTLINE layer and every
// cutout and hole on the CUTOUTS layer.
func ExportFlatPatternDXF(path string, fp FlatPattern) error {
	if len(fp.Outline) < 3 {
		return ErrNoFlatPattern
	}
	d := dxf.NewDrawing()
	if _, err := d.AddLayer(layerOutline, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return err
	}
	if err := drawLoop(d, fp.Outline); err != nil {
		return err
	}

	if _, err := d.AddLayer(layerCutouts, color.Red, dxf.DefaultLineType, true); err != nil {
		return err
	}
	for _, c := range fp.Cutouts {
		if err := drawLoop(d, c); err != nil {
			return err
		}
	}
	for _, h := range fp.Holes {
		if _, err := d.Circle(h.Center.X, h.Center.Y, 0, h.Diameter/2); err != nil {
			return err
		}
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

func drawLoop(d *drawing.Drawing, o geometry.Outline) error {
	if len(o) < 2 {
		return nil
	}
	for i := range o {
		a, b := o[i], o[(i+1)%len(o)]
		if _, err := d.Line(a.X, a.Y, 0, b.X, b.Y, 0); err != nil {
			return err
		}
	}
	return nil
}

func rectangle(w, l float64) geometry.Outline {
	return geometry.Outline{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: l}, {X: 0, Y: l}}
}

// planeAxes returns the indices of the longest and second longest extents.
func planeAxes(bb model.BoundingBox) (major, minor int) {
	ext := []float64{bb.X, bb.Y, bb.Z}
	idx := []int{0, 1, 2}
	sort.SliceStable(idx, func(i, j int) bool { return ext[idx[i]] > ext[idx[j]] })
	return idx[0], idx[1]
}

func axisValue(p model.Point3D, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}
