// Package mesh reads triangulated part geometry and derives its global
// descriptors.
package mesh

import (
	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/model"
)

// Mesh is an ordered list of triangles read from one file. It is not
// modified after parsing.
type Mesh struct {
	Name      string
	Format    model.MeshFormat
	Triangles []geometry.Triangle
}

// NewMesh wraps a triangle list.
func NewMesh(name string, format model.MeshFormat, triangles []geometry.Triangle) *Mesh {
	return &Mesh{Name: name, Format: format, Triangles: triangles}
}

// Len returns the number of triangles.
func (m *Mesh) Len() int { return len(m.Triangles) }

// Bounds returns the axis-aligned bounds of all vertices.
func (m *Mesh) Bounds() geometry.Bounds {
	b := geometry.NewBounds()
	for _, t := range m.Triangles {
		b.ExtendTriangle(t)
	}
	return b
}

// Volume returns the enclosed volume as the absolute sum of signed
// tetrahedron volumes. It is exact for closed meshes regardless of winding.
func (m *Mesh) Volume() float64 {
	var v float64
	for _, t := range m.Triangles {
		v += t.SignedVolume()
	}
	if v < 0 {
		v = -v
	}
	return v
}

// SurfaceArea returns the summed triangle area.
func (m *Mesh) SurfaceArea() float64 {
	var a float64
	for _, t := range m.Triangles {
		a += t.Area()
	}
	return a
}
