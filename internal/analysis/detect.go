package analysis

import (
	"math"

	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// Detector finds features in an analyzed mesh.
type Detector struct {
	th model.Thresholds
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(th model.Thresholds) *Detector {
	return &Detector{th: th}
}

// Scene is the shared input of every feature test.
type Scene struct {
	Infos  []TriangleInfo
	Index  *Index
	Bounds geometry.Bounds

	// wall thickness behind each triangle, 0 when no opposing face was found
	thickness []float64
}

// NewScene indexes triangle descriptors for detection.
func NewScene(infos []TriangleInfo) *Scene {
	b := geometry.NewBounds()
	for _, info := range infos {
		for _, v := range info.Vertices {
			b.Extend(v)
		}
	}
	return &Scene{Infos: infos, Index: NewIndex(infos), Bounds: b}
}

// WallThicknesses returns the positive wall thickness samples measured by
// the last Detect call.
func (s *Scene) WallThicknesses() []float64 {
	var out []float64
	for _, t := range s.thickness {
		if t > 0 {
			out = append(out, t)
		}
	}
	return out
}

// Detect runs every feature test and returns the feature map. Kinds with no
// accepted cluster are absent from the map.
func (d *Detector) Detect(s *Scene) model.FeatureMap {
	fm := model.FeatureMap{}
	if len(s.Infos) == 0 {
		return fm
	}
	d.measureWalls(s)
	for _, kind := range model.AllFeatureKinds {
		if locs := d.detectKind(s, kind); len(locs) > 0 {
			fm[kind] = locs
		}
	}
	return fm
}

func (d *Detector) detectKind(s *Scene, kind model.FeatureKind) []model.FeatureLocation {
	params := d.th.Cluster(kind)
	candidate := make([]bool, len(s.Infos))
	found := false
	for i := range s.Infos {
		if d.candidate(s, kind, i) {
			candidate[i] = true
			found = true
		}
	}
	if !found {
		return nil
	}

	var out []model.FeatureLocation
	for _, members := range grow(s.Infos, s.Index, candidate, params.Radius) {
		if len(members) < params.MinSize {
			continue
		}
		c := newCluster(s.Infos, members)
		loc, ok := d.validate(s, kind, c)
		if !ok {
			continue
		}
		out = append(out, loc)
	}
	return out
}

// candidate is the coarse per-triangle filter of a kind.
func (d *Detector) candidate(s *Scene, kind model.FeatureKind, i int) bool {
	v := d.th.Validation
	info := s.Infos[i]
	n := info.Normal
	switch kind {
	case model.KindHoles, model.KindBosses:
		return info.Orientation == Vertical && info.Curvature > v.HoleCurvature
	case model.KindThreads:
		return info.Orientation == Angled && info.Curvature > v.ThreadCurvature
	case model.KindCounterbores:
		return info.Orientation == Vertical
	case model.KindCountersinks:
		return info.Orientation == Angled
	case model.KindPockets, model.KindSlots:
		return n.Z > d.th.Triangles.HorizontalDot && info.Centroid.Z < s.Bounds.Max.Z-v.TopClearance
	case model.KindFillets:
		return info.Orientation == Angled && info.Curvature > v.FilletCurvature
	case model.KindChamfers:
		z := math.Abs(n.Z)
		return info.Orientation == Angled && z > 0.5 && z < d.th.Triangles.HorizontalDot
	case model.KindSharpCorners:
		return info.Curvature > v.SharpCornerCurvature
	case model.KindThinWalls:
		t := s.thickness[i]
		return info.Orientation == Vertical && t > 0 && t < v.ThinWallMax
	case model.KindRibs:
		t := s.thickness[i]
		return info.Orientation == Vertical && t > 0 && t <= v.RibMax
	case model.KindUndercuts:
		return n.Z < v.UndercutNormalZ && info.Centroid.Z > s.Bounds.Min.Z+v.UndercutFloorOffset
	case model.KindToolAccessRestricted:
		return info.Orientation == Vertical && s.Bounds.Max.Z-info.Centroid.Z > v.ToolAccessDepth
	case model.KindComplexSurfaces:
		return info.Orientation == Angled && info.Curvature > v.ComplexCurvatureMin && info.Curvature < v.ComplexCurvatureMax
	}
	return false
}

// validate applies the geometric test of a kind to a grown cluster.
func (d *Detector) validate(s *Scene, kind model.FeatureKind, c cluster) (model.FeatureLocation, bool) {
	v := d.th.Validation
	minSize := d.th.Cluster(kind).MinSize
	conf := func(strength float64) float64 {
		return confidence(c.size(), minSize, strength, v.MaxConfidence)
	}

	switch kind {
	case model.KindHoles, model.KindBosses:
		fit := fitCylinder(s.Infos, c)
		if fit.alignment <= v.CylindricalAlignment || fit.span < v.ArcSpanDegrees {
			return model.FeatureLocation{}, false
		}
		if fit.inward() != (kind == model.KindHoles) {
			return model.FeatureLocation{}, false
		}
		dia := 2 * fit.meanRadius()
		if dia >= v.EnvelopeRatio*crossSection(s.Bounds, fit.axis) {
			return model.FeatureLocation{}, false
		}
		loc := c.location(conf(fit.alignment))
		loc.Diameter = dia
		loc.Depth = geometry.Component(c.bounds.Size(), fit.axis)
		return loc, true

	case model.KindThreads:
		fit := fitCylinder(s.Infos, c)
		if fit.alignment <= v.CylindricalAlignment || fit.span <= v.HelicalSpanDegrees || c.size() <= v.HelicalMinSize {
			return model.FeatureLocation{}, false
		}
		loc := c.location(conf(fit.alignment * math.Min(fit.span/360, 1)))
		loc.Diameter = 2 * fit.meanRadius()
		loc.Depth = geometry.Component(c.bounds.Size(), fit.axis)
		return loc, true

	case model.KindCounterbores:
		fit := fitCylinder(s.Infos, c)
		if fit.alignment <= v.CylindricalAlignment || !fit.inward() {
			return model.FeatureLocation{}, false
		}
		if radiusStep(fit.radii) <= v.CounterboreStep {
			return model.FeatureLocation{}, false
		}
		loc := c.location(conf(fit.alignment))
		loc.Diameter = 2 * maxOf(fit.radii)
		loc.Depth = geometry.Component(c.bounds.Size(), fit.axis)
		return loc, true

	case model.KindCountersinks:
		score := conicalAlignment(s.Infos, c)
		if score <= v.ConicalAlignment {
			return model.FeatureLocation{}, false
		}
		loc := c.location(conf(score))
		size := c.bounds.Size()
		loc.Diameter = math.Max(size.X, size.Y)
		return loc, true

	case model.KindPockets, model.KindSlots:
		below, depth, ok := recessDepth(s, c, v.RecessNeighborMax)
		if !ok || below <= v.RecessDepth {
			return model.FeatureLocation{}, false
		}
		if kind == model.KindSlots && c.elongation() <= v.SlotElongation {
			return model.FeatureLocation{}, false
		}
		loc := c.location(conf(below / (2 * v.RecessDepth)))
		loc.Depth = depth
		return loc, true

	case model.KindFillets:
		score := convergence(s.Infos, c)
		if score <= v.Convergence {
			return model.FeatureLocation{}, false
		}
		return c.location(conf(score)), true

	case model.KindChamfers:
		if c.consistency() <= v.ChamferConsistency || c.elongation() <= v.ChamferElongation {
			return model.FeatureLocation{}, false
		}
		return c.location(conf(c.consistency())), true

	case model.KindSharpCorners:
		var sum float64
		for _, i := range c.members {
			sum += s.Infos[i].Curvature
		}
		return c.location(conf(sum / float64(c.size()))), true

	case model.KindThinWalls:
		t := minThickness(s, c)
		loc := c.location(conf(1 - t/v.ThinWallMax))
		loc.Thickness = t
		return loc, true

	case model.KindRibs:
		e := c.elongation()
		if e <= v.RibElongation {
			return model.FeatureLocation{}, false
		}
		loc := c.location(conf(math.Min(e/(2*v.RibElongation), 1)))
		loc.Thickness = minThickness(s, c)
		return loc, true

	case model.KindUndercuts:
		return c.location(conf(-c.meanNormal.Z)), true

	case model.KindToolAccessRestricted:
		size := c.bounds.Size()
		lateral := math.Max(size.X, size.Y)
		if lateral <= 1e-9 {
			return model.FeatureLocation{}, false
		}
		aspect := size.Z / lateral
		if aspect <= v.ToolAccessAspect || radialConcavity(s.Infos, c, 2) <= 0 {
			return model.FeatureLocation{}, false
		}
		// Drilled holes are deep and narrow too, but a drill reaches them.
		if fit := fitCylinder(s.Infos, c); fit.alignment > v.CylindricalAlignment {
			return model.FeatureLocation{}, false
		}
		loc := c.location(conf(math.Min(aspect/(2*v.ToolAccessAspect), 1)))
		loc.Depth = s.Bounds.Max.Z - c.bounds.Min.Z
		return loc, true

	case model.KindComplexSurfaces:
		variation := 1 - c.consistency()
		if variation <= v.SurfaceVariation {
			return model.FeatureLocation{}, false
		}
		return c.location(conf(variation)), true
	}
	return model.FeatureLocation{}, false
}

// measureWalls finds, for every triangle, the distance through material to
// the nearest opposing face.
func (d *Detector) measureWalls(s *Scene) {
	v := d.th.Validation
	s.thickness = make([]float64, len(s.Infos))
	search := d.th.Cluster(model.KindThinWalls).Radius
	if r := d.th.Cluster(model.KindRibs).Radius; r > search {
		search = r
	}
	for i, info := range s.Infos {
		if info.Orientation != Vertical {
			continue
		}
		best := math.Inf(1)
		for _, j := range s.Index.Within(info.Centroid, search) {
			if j == i || r3.Dot(info.Normal, s.Infos[j].Normal) >= v.OpposingDot {
				continue
			}
			// The opposing face lies behind this one, inside the material.
			t := r3.Dot(r3.Sub(info.Centroid, s.Infos[j].Centroid), info.Normal)
			if t > 1e-6 && t < best {
				best = t
			}
		}
		if !math.IsInf(best, 1) {
			s.thickness[i] = best
		}
	}
}

func minThickness(s *Scene, c cluster) float64 {
	min := math.Inf(1)
	for _, i := range c.members {
		if t := s.thickness[i]; t > 0 && t < min {
			min = t
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return min
}

// recessDepth compares a flat cluster against the triangles around it. It
// returns how far the cluster sits below the mean of its surroundings and
// the depth to the highest surrounding surface. ok is false when nothing
// surrounds the cluster.
func recessDepth(s *Scene, c cluster, reach float64) (below, depth float64, ok bool) {
	in := make(map[int]bool, c.size())
	for _, i := range c.members {
		in[i] = true
	}
	lo, hi := c.bounds.Min, c.bounds.Max
	var sum float64
	var n int
	top := math.Inf(-1)
	for i, info := range s.Infos {
		// Faces pointing down cannot be seen from above the recess.
		if in[i] || info.Normal.Z < -0.15 {
			continue
		}
		p := info.Centroid
		if p.X < lo.X-reach || p.X > hi.X+reach || p.Y < lo.Y-reach || p.Y > hi.Y+reach {
			continue
		}
		sum += p.Z
		n++
		for _, vtx := range info.Vertices {
			top = math.Max(top, vtx.Z)
		}
	}
	if n == 0 {
		return 0, 0, false
	}
	floor := meanZ(s.Infos, c.members)
	return sum/float64(n) - floor, top - floor, true
}

// crossSection is the smaller part extent perpendicular to axis.
func crossSection(b geometry.Bounds, axis int) float64 {
	size := b.Size()
	u := geometry.Component(size, (axis+1)%3)
	w := geometry.Component(size, (axis+2)%3)
	return math.Min(u, w)
}

func maxOf(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		m = math.Max(m, x)
	}
	return m
}
