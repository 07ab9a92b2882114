package analysis

import (
	"math"
	"sort"

	"github.com/piwi3910/partquote/internal/geometry"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// cylinderFit describes how well a cluster wraps around an axis parallel to
// one of the coordinate axes.
type cylinderFit struct {
	axis      int     // dominant axis
	center    r3.Vec  // axis position (axis component zeroed)
	alignment float64 // mean |n·r̂|
	signed    float64 // mean n·r̂, negative when normals face the axis
	radii     []float64
	span      float64 // degrees of arc covered around the axis
}

func (f cylinderFit) meanRadius() float64 {
	if len(f.radii) == 0 {
		return 0
	}
	return stat.Mean(f.radii, nil)
}

func (f cylinderFit) inward() bool { return f.signed < 0 }

// dominantAxis is the coordinate axis the normals are most perpendicular to.
func dominantAxis(infos []TriangleInfo, members []int) int {
	var sum [3]float64
	for _, i := range members {
		n := infos[i].Normal
		sum[0] += math.Abs(n.X)
		sum[1] += math.Abs(n.Y)
		sum[2] += math.Abs(n.Z)
	}
	axis := 2
	for a := 0; a < 3; a++ {
		if sum[a] < sum[axis] {
			axis = a
		}
	}
	return axis
}

func fitCylinder(infos []TriangleInfo, c cluster) cylinderFit {
	axis := dominantAxis(infos, c.members)
	center := geometry.RejectAxis(c.centroid, axis)
	fit := cylinderFit{axis: axis, center: center}

	angles := make([]float64, 0, c.size())
	u, w := (axis+1)%3, (axis+2)%3
	var absSum, signedSum float64
	var counted int
	for _, i := range c.members {
		radial := r3.Sub(geometry.RejectAxis(infos[i].Centroid, axis), center)
		r := r3.Norm(radial)
		if r < 1e-9 {
			continue
		}
		rhat := r3.Scale(1/r, radial)
		d := r3.Dot(infos[i].Normal, rhat)
		absSum += math.Abs(d)
		signedSum += d
		counted++
		fit.radii = append(fit.radii, r)
		angles = append(angles, math.Atan2(geometry.Component(radial, w), geometry.Component(radial, u)))
	}
	if counted > 0 {
		fit.alignment = absSum / float64(counted)
		fit.signed = signedSum / float64(counted)
	}
	fit.span = angularSpan(angles)
	return fit
}

// angularSpan returns the arc in degrees covered by the angles, computed as
// 360 minus the largest gap between neighbours.
func angularSpan(angles []float64) float64 {
	if len(angles) < 2 {
		return 0
	}
	sorted := append([]float64(nil), angles...)
	sort.Float64s(sorted)
	maxGap := sorted[0] + 2*math.Pi - sorted[len(sorted)-1]
	for i := 1; i < len(sorted); i++ {
		if g := sorted[i] - sorted[i-1]; g > maxGap {
			maxGap = g
		}
	}
	return (2*math.Pi - maxGap) * 180 / math.Pi
}

// radiusStep is the ratio of the 90th to the 10th percentile radius. Stepped
// bores show a clear jump; plain holes stay near 1.
func radiusStep(radii []float64) float64 {
	if len(radii) < 2 {
		return 1
	}
	sorted := append([]float64(nil), radii...)
	sort.Float64s(sorted)
	lo := stat.Quantile(0.1, stat.Empirical, sorted, nil)
	hi := stat.Quantile(0.9, stat.Empirical, sorted, nil)
	if lo <= 1e-9 {
		return math.Inf(1)
	}
	return hi / lo
}

// convergence is the mean alignment of normals with the direction toward
// the cluster centroid. Concave surfaces score high.
func convergence(infos []TriangleInfo, c cluster) float64 {
	var sum float64
	var n int
	for _, i := range c.members {
		dir := geometry.SafeUnit(r3.Sub(c.centroid, infos[i].Centroid))
		if dir == (r3.Vec{}) {
			continue
		}
		sum += r3.Dot(infos[i].Normal, dir)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// radialConcavity is convergence measured in the plane perpendicular to an
// axis, so tall narrow walls are judged by their cross-section.
func radialConcavity(infos []TriangleInfo, c cluster, axis int) float64 {
	center := geometry.RejectAxis(c.centroid, axis)
	var sum float64
	var n int
	for _, i := range c.members {
		dir := geometry.SafeUnit(r3.Sub(center, geometry.RejectAxis(infos[i].Centroid, axis)))
		if dir == (r3.Vec{}) {
			continue
		}
		sum += r3.Dot(geometry.RejectAxis(infos[i].Normal, axis), dir)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// conicalAlignment locates the apex where the normal lines meet the axis of
// the cluster and returns the mean alignment of the normals with the
// direction to that apex.
func conicalAlignment(infos []TriangleInfo, c cluster) float64 {
	axis := geometry.SafeUnit(c.meanNormal)
	if axis == (r3.Vec{}) {
		return 0
	}
	var apex r3.Vec
	var n int
	for _, i := range c.members {
		p, ok := closestOnAxis(infos[i].Centroid, infos[i].Normal, c.centroid, axis)
		if !ok {
			continue
		}
		apex = r3.Add(apex, p)
		n++
	}
	if n == 0 {
		return 0
	}
	apex = r3.Scale(1/float64(n), apex)

	var sum float64
	for _, i := range c.members {
		dir := geometry.SafeUnit(r3.Sub(apex, infos[i].Centroid))
		sum += r3.Dot(infos[i].Normal, dir)
	}
	return sum / float64(c.size())
}

// closestOnAxis returns the point of the line (o, a) closest to the line
// (p, n). Parallel lines have no unique answer.
func closestOnAxis(p, n, o, a r3.Vec) (r3.Vec, bool) {
	w := r3.Sub(o, p)
	b := r3.Dot(a, n)
	denom := 1 - b*b
	if denom < 1e-9 {
		return r3.Vec{}, false
	}
	d := r3.Dot(a, w)
	e := r3.Dot(n, w)
	s := (b*e - d) / denom
	return r3.Add(o, r3.Scale(s, a)), true
}

// meanZ returns the mean centroid Z of the given triangles.
func meanZ(infos []TriangleInfo, members []int) float64 {
	if len(members) == 0 {
		return 0
	}
	var sum float64
	for _, i := range members {
		sum += infos[i].Centroid.Z
	}
	return sum / float64(len(members))
}
