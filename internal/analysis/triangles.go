// Package analysis turns a triangle mesh into per-triangle descriptors and
// clusters them into manufacturing features.
package analysis

import (
	"math"

	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// Orientation classifies a facet by the Z component of its normal.
type Orientation int

const (
	Horizontal Orientation = iota // |n·Z| above the horizontal threshold
	Vertical                      // |n·Z| below the vertical threshold
	Angled
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "angled"
	}
}

// TriangleInfo holds the per-triangle descriptors.
type TriangleInfo struct {
	Index       int
	Centroid    r3.Vec
	Normal      r3.Vec
	Area        float64
	Orientation Orientation
	Curvature   float64
	Vertices    [3]r3.Vec
}

// AnalyzeTriangles computes descriptors for every triangle.
//
// Curvature is the mean of (1 - n·m) over the triangles within
// CurvatureWindow positions in file order, not over true mesh neighbours.
// Exporters write facets in roughly spatial order, which makes the window a
// usable stand-in for adjacency; on shuffled meshes curvature degrades to
// noise.
func AnalyzeTriangles(tris []geometry.Triangle, th model.TriangleThresholds) []TriangleInfo {
	infos := make([]TriangleInfo, len(tris))
	for i, t := range tris {
		n := t.Normal()
		infos[i] = TriangleInfo{
			Index:       i,
			Centroid:    t.Centroid(),
			Normal:      n,
			Area:        t.Area(),
			Orientation: orient(n, th),
			Vertices:    t.Vertices(),
		}
	}

	w := th.CurvatureWindow
	for i := range infos {
		var sum float64
		var count int
		for j := i - w; j <= i+w; j++ {
			if j == i || j < 0 || j >= len(infos) {
				continue
			}
			if infos[j].Normal == (r3.Vec{}) {
				continue
			}
			sum += 1 - r3.Dot(infos[i].Normal, infos[j].Normal)
			count++
		}
		if count > 0 {
			infos[i].Curvature = sum / float64(count)
		}
	}
	return infos
}

func orient(n r3.Vec, th model.TriangleThresholds) Orientation {
	z := math.Abs(n.Z)
	switch {
	case z > th.HorizontalDot:
		return Horizontal
	case z < th.VerticalDot:
		return Vertical
	default:
		return Angled
	}
}
