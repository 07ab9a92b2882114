package geometry

import "math"

// Point2D is a point of a flat profile in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline is a closed polygon. The closing edge from the last point back to
// the first is implicit.
type Outline []Point2D

// BoundingBox returns the min and max corners.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min, max = o[0], o[0]
	for _, p := range o[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// Size returns the bounding box width and height.
func (o Outline) Size() (w, h float64) {
	min, max := o.BoundingBox()
	return max.X - min.X, max.Y - min.Y
}

// Translate returns a copy shifted by (dx, dy).
func (o Outline) Translate(dx, dy float64) Outline {
	out := make(Outline, len(o))
	for i, p := range o {
		out[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// Area is the absolute shoelace area.
func (o Outline) Area() float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(area) / 2
}

// Perimeter includes the closing edge.
func (o Outline) Perimeter() float64 {
	n := len(o)
	if n < 2 {
		return 0
	}
	var l float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		l += math.Hypot(o[j].X-o[i].X, o[j].Y-o[i].Y)
	}
	return l
}

// Inside reports whether every point of inner lies within o's bounding box.
func (o Outline) Inside(inner Outline) bool {
	min, max := o.BoundingBox()
	for _, p := range inner {
		if p.X < min.X || p.X > max.X || p.Y < min.Y || p.Y > max.Y {
			return false
		}
	}
	return len(inner) > 0
}
