package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a triangular facet in mm. Normals are always derived from the
// vertex winding; stored normals from files are not trusted.
type Triangle struct {
	V1, V2, V3 r3.Vec
}

// NewTriangle creates a new triangle
func NewTriangle(v1, v2, v3 r3.Vec) Triangle {
	return Triangle{V1: v1, V2: v2, V3: v3}
}

func (t Triangle) cross() r3.Vec {
	return r3.Cross(r3.Sub(t.V2, t.V1), r3.Sub(t.V3, t.V1))
}

// Normal returns the unit normal following the right-hand rule, or the zero
// vector for a degenerate triangle.
func (t Triangle) Normal() r3.Vec {
	return SafeUnit(t.cross())
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float64 {
	return r3.Norm(t.cross()) / 2.0
}

// Centroid returns the mean of the three vertices.
func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1.0/3.0, r3.Add(r3.Add(t.V1, t.V2), t.V3))
}

// SignedVolume returns the signed volume of the tetrahedron spanned by the
// triangle and the origin. Summed over a closed mesh it gives the enclosed
// volume, positive for outward winding.
func (t Triangle) SignedVolume() float64 {
	return r3.Dot(t.V1, r3.Cross(t.V2, t.V3)) / 6.0
}

// EdgeLengths returns the lengths of all three edges
func (t Triangle) EdgeLengths() [3]float64 {
	return [3]float64{
		r3.Norm(r3.Sub(t.V2, t.V1)),
		r3.Norm(r3.Sub(t.V3, t.V2)),
		r3.Norm(r3.Sub(t.V1, t.V3)),
	}
}

// Perimeter returns the total length of all edges
func (t Triangle) Perimeter() float64 {
	l := t.EdgeLengths()
	return l[0] + l[1] + l[2]
}

// Vertices returns the three corners in order.
func (t Triangle) Vertices() [3]r3.Vec {
	return [3]r3.Vec{t.V1, t.V2, t.V3}
}

// IsDegenerate reports whether the triangle has (near) zero area.
func (t Triangle) IsDegenerate() bool {
	return t.Area() < 1e-12
}

// SafeUnit normalizes v, returning the zero vector instead of NaNs when v
// has no length.
func SafeUnit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 || math.IsNaN(n) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// Component returns the coordinate of v along axis 0 (X), 1 (Y) or 2 (Z).
func Component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// AxisVec returns the unit vector of an axis index.
func AxisVec(axis int) r3.Vec {
	switch axis {
	case 0:
		return r3.Vec{X: 1}
	case 1:
		return r3.Vec{Y: 1}
	default:
		return r3.Vec{Z: 1}
	}
}

// RejectAxis removes the component of v along the given axis.
func RejectAxis(v r3.Vec, axis int) r3.Vec {
	switch axis {
	case 0:
		v.X = 0
	case 1:
		v.Y = 0
	default:
		v.Z = 0
	}
	return v
}
