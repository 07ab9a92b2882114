package geometry

import (
	"math"

	"github.com/piwi3910/partquote/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bounds is an axis-aligned bounding box accumulator.
type Bounds struct {
	Min   r3.Vec
	Max   r3.Vec
	empty bool
}

// NewBounds creates an empty bounding box
func NewBounds() Bounds {
	return Bounds{
		Min:   r3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
		Max:   r3.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
		empty: true,
	}
}

// Extend expands the bounding box to include a point
func (b *Bounds) Extend(p r3.Vec) {
	b.Min = r3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
	b.Max = r3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
	b.empty = false
}

// ExtendTriangle adds all three vertices.
func (b *Bounds) ExtendTriangle(t Triangle) {
	b.Extend(t.V1)
	b.Extend(t.V2)
	b.Extend(t.V3)
}

// Empty reports whether no point has been added.
func (b Bounds) Empty() bool { return b.empty }

// Size returns the dimensions of the bounding box, zero when empty.
func (b Bounds) Size() r3.Vec {
	if b.empty {
		return r3.Vec{}
	}
	return r3.Sub(b.Max, b.Min)
}

// Center returns the center point of the bounding box
func (b Bounds) Center() r3.Vec {
	if b.empty {
		return r3.Vec{}
	}
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Diagonal returns the length of the bounding box diagonal
func (b Bounds) Diagonal() float64 {
	return r3.Norm(b.Size())
}

// Model converts the accumulator to the serializable box. An empty
// accumulator becomes a zero box at the origin.
func (b Bounds) Model() model.BoundingBox {
	if b.empty {
		return model.NewBoundingBox(model.Point3D{}, model.Point3D{})
	}
	return model.NewBoundingBox(ToPoint(b.Min), ToPoint(b.Max))
}

// BoundsOf returns the bounds of a set of points.
func BoundsOf(points []r3.Vec) Bounds {
	b := NewBounds()
	for _, p := range points {
		b.Extend(p)
	}
	return b
}

// ToPoint converts a vector to the serializable point type.
func ToPoint(v r3.Vec) model.Point3D {
	return model.Point3D{X: v.X, Y: v.Y, Z: v.Z}
}

// FromPoint converts a serializable point to a vector.
func FromPoint(p model.Point3D) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}
