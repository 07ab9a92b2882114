// Package meshtest builds deterministic triangle meshes for tests. All
// fixtures use outward winding and emit triangles in spatial order.
package meshtest

import (
	"bytes"
	"math"

	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/mesh"
	"github.com/piwi3910/partquote/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

func v(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }

// Tri returns a triangle wound so its normal points along outward.
func Tri(a, b, c, outward r3.Vec) geometry.Triangle {
	t := geometry.NewTriangle(a, b, c)
	if r3.Dot(t.Normal(), outward) < 0 {
		t.V2, t.V3 = t.V3, t.V2
	}
	return t
}

// Quad splits the planar quad abcd into two triangles facing outward.
func Quad(a, b, c, d, outward r3.Vec) []geometry.Triangle {
	return []geometry.Triangle{Tri(a, b, c, outward), Tri(a, c, d, outward)}
}

// AxisRect emits an axis-aligned rectangle perpendicular to axis at the
// given coordinate, spanning [u0,u1]x[v0,v1] over the two remaining axes in
// order, subdivided into div x div cells. sign selects the normal direction.
func AxisRect(axis int, at, u0, u1, v0, v1, sign float64, div int) []geometry.Triangle {
	if div < 1 {
		div = 1
	}
	outward := r3.Scale(sign, geometry.AxisVec(axis))
	point := func(u, w float64) r3.Vec {
		switch axis {
		case 0:
			return v(at, u, w)
		case 1:
			return v(u, at, w)
		default:
			return v(u, w, at)
		}
	}
	du := (u1 - u0) / float64(div)
	dw := (v1 - v0) / float64(div)
	var tris []geometry.Triangle
	for i := 0; i < div; i++ {
		for j := 0; j < div; j++ {
			ua, ub := u0+float64(i)*du, u0+float64(i+1)*du
			wa, wb := v0+float64(j)*dw, v0+float64(j+1)*dw
			tris = append(tris, Quad(point(ua, wa), point(ub, wa), point(ub, wb), point(ua, wb), outward)...)
		}
	}
	return tris
}

// Box returns the 12 triangles of an axis-aligned box from min to max.
func Box(min, max r3.Vec) []geometry.Triangle {
	var tris []geometry.Triangle
	tris = append(tris, AxisRect(2, min.Z, min.X, max.X, min.Y, max.Y, -1, 1)...)
	tris = append(tris, AxisRect(2, max.Z, min.X, max.X, min.Y, max.Y, 1, 1)...)
	tris = append(tris, AxisRect(1, min.Y, min.X, max.X, min.Z, max.Z, -1, 1)...)
	tris = append(tris, AxisRect(1, max.Y, min.X, max.X, min.Z, max.Z, 1, 1)...)
	tris = append(tris, AxisRect(0, min.X, min.Y, max.Y, min.Z, max.Z, -1, 1)...)
	tris = append(tris, AxisRect(0, max.X, min.Y, max.Y, min.Z, max.Z, 1, 1)...)
	return tris
}

// Plate returns a flat w x l x t plate with its bottom on z=0.
func Plate(w, l, t float64) []geometry.Triangle {
	return Box(v(0, 0, 0), v(w, l, t))
}

// Cylinder returns a closed cylinder of the given radius along Z from z=0
// to z=length, centered on the Z axis.
func Cylinder(radius, length float64, segments int) []geometry.Triangle {
	var tris []geometry.Triangle
	top, bottom := v(0, 0, length), v(0, 0, 0)
	for k := 0; k < segments; k++ {
		a0 := 2 * math.Pi * float64(k) / float64(segments)
		a1 := 2 * math.Pi * float64(k+1) / float64(segments)
		p0 := v(radius*math.Cos(a0), radius*math.Sin(a0), 0)
		p1 := v(radius*math.Cos(a1), radius*math.Sin(a1), 0)
		mid := (a0 + a1) / 2
		out := v(math.Cos(mid), math.Sin(mid), 0)
		tris = append(tris, Quad(p0, p1, r3.Add(p1, top), r3.Add(p0, top), out)...)
		tris = append(tris, Tri(top, r3.Add(p0, top), r3.Add(p1, top), v(0, 0, 1)))
		tris = append(tris, Tri(bottom, p1, p0, v(0, 0, -1)))
	}
	return tris
}

// HoleSegments is the number of facets around each hole of CubeWithHoles.
const HoleSegments = 16

// CubeWithHoles returns a size^3 cube pierced by four vertical through-holes
// of the given radius, one in the center of each XY quadrant. Hole walls
// are split into rings of ringHeight.
func CubeWithHoles(size, radius, ringHeight float64) []geometry.Triangle {
	half := size / 2
	q := half / 2
	centers := []r3.Vec{v(q, q, 0), v(half+q, q, 0), v(q, half+q, 0), v(half+q, half+q, 0)}
	rings := int(math.Max(1, math.Round(size/ringHeight)))
	dz := size / float64(rings)

	var tris []geometry.Triangle
	for _, c := range centers {
		circle := make([]r3.Vec, HoleSegments+1)
		square := make([]r3.Vec, HoleSegments+1)
		for k := 0; k <= HoleSegments; k++ {
			a := 2 * math.Pi * float64(k) / float64(HoleSegments)
			dir := v(math.Cos(a), math.Sin(a), 0)
			circle[k] = r3.Add(c, r3.Scale(radius, dir))
			// Project the ray onto the quadrant square; samples at 45
			// degree steps land exactly on its corners.
			reach := q / math.Max(math.Abs(dir.X), math.Abs(dir.Y))
			square[k] = r3.Add(c, r3.Scale(reach, dir))
		}

		up := v(0, 0, size)
		for k := 0; k < HoleSegments; k++ {
			tris = append(tris, Quad(r3.Add(circle[k], up), r3.Add(square[k], up),
				r3.Add(square[k+1], up), r3.Add(circle[k+1], up), v(0, 0, 1))...)
		}
		for r := 0; r < rings; r++ {
			z0, z1 := v(0, 0, float64(r)*dz), v(0, 0, float64(r+1)*dz)
			for k := 0; k < HoleSegments; k++ {
				mid := r3.Scale(0.5, r3.Add(circle[k], circle[k+1]))
				inward := r3.Sub(c, mid)
				inward.Z = 0
				tris = append(tris, Quad(r3.Add(circle[k], z0), r3.Add(circle[k+1], z0),
					r3.Add(circle[k+1], z1), r3.Add(circle[k], z1), inward)...)
			}
		}
		for k := 0; k < HoleSegments; k++ {
			tris = append(tris, Quad(circle[k], circle[k+1], square[k+1], square[k], v(0, 0, -1))...)
		}
	}

	tris = append(tris, AxisRect(1, 0, 0, size, 0, size, -1, 1)...)
	tris = append(tris, AxisRect(1, size, 0, size, 0, size, 1, 1)...)
	tris = append(tris, AxisRect(0, 0, 0, size, 0, size, -1, 1)...)
	tris = append(tris, AxisRect(0, size, 0, size, 0, size, 1, 1)...)
	return tris
}

// PocketBlock returns a w x w x h block with a square pocket of side p and
// the given depth cut into the center of its top face. The pocket floor is
// subdivided into floorDiv x floorDiv cells.
func PocketBlock(w, h, p, depth float64, floorDiv int) []geometry.Triangle {
	a, b := (w-p)/2, (w+p)/2
	floor := h - depth
	splits := []float64{0, a, b, w}

	var tris []geometry.Triangle
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == 1 && j == 1 {
				continue
			}
			tris = append(tris, AxisRect(2, h, splits[i], splits[i+1], splits[j], splits[j+1], 1, 1)...)
		}
	}
	// Pocket walls face into the pocket.
	tris = append(tris, AxisRect(0, a, a, b, floor, h, 1, 1)...)
	tris = append(tris, AxisRect(0, b, a, b, floor, h, -1, 1)...)
	tris = append(tris, AxisRect(1, a, a, b, floor, h, 1, 1)...)
	tris = append(tris, AxisRect(1, b, a, b, floor, h, -1, 1)...)
	tris = append(tris, AxisRect(2, floor, a, b, a, b, 1, floorDiv)...)

	tris = append(tris, AxisRect(2, 0, 0, w, 0, w, -1, 1)...)
	tris = append(tris, AxisRect(1, 0, 0, w, 0, h, -1, 1)...)
	tris = append(tris, AxisRect(1, w, 0, w, 0, h, 1, 1)...)
	tris = append(tris, AxisRect(0, 0, 0, w, 0, h, -1, 1)...)
	tris = append(tris, AxisRect(0, w, 0, w, 0, h, 1, 1)...)
	return tris
}

// Binary encodes triangles as a binary STL buffer.
func Binary(tris []geometry.Triangle) []byte {
	var buf bytes.Buffer
	if err := mesh.EncodeBinary(&buf, "fixture", tris); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Text encodes triangles as a text STL buffer.
func Text(tris []geometry.Triangle) []byte {
	var buf bytes.Buffer
	if err := mesh.EncodeText(&buf, "fixture", tris); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Mesh wraps triangles in a binary-format mesh without encoding them.
func Mesh(tris []geometry.Triangle) *mesh.Mesh {
	return mesh.NewMesh("fixture", model.FormatBinary, tris)
}
