package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/entity"
)

// Profile is a flat part read from a 2D drawing: the outer boundary plus
// every cutout inside it.
type Profile struct {
	Outer         geometry.Outline   `json:"outer"`
	Cutouts       []geometry.Outline `json:"cutouts"`
	HoleDiameters []float64          `json:"hole_diameters"` // circular cutouts
	Width         float64            `json:"width"`
	Length        float64            `json:"length"`
	Area          float64            `json:"area"`       // outer minus cutouts, mm²
	CutLength     float64            `json:"cut_length"` // all perimeters, mm
}

// ProfileResult holds the outcome of a profile import.
type ProfileResult struct {
	Profile  *Profile
	Errors   []string
	Warnings []string
}

// segment is a line between two points, used for chaining loose LINE and ARC
// entities into closed outlines.
type segment struct {
	start geometry.Point2D
	end   geometry.Point2D
}

// shape is one closed outline and, for circles, its diameter.
type shape struct {
	outline  geometry.Outline
	diameter float64
}

// ImportProfile reads a DXF drawing. The largest closed shape is the outer
// boundary; closed shapes inside it are cutouts. Shapes outside the boundary
// are reported as warnings.
func ImportProfile(path string) ProfileResult {
	d, err := dxf.Open(path)
	if err != nil {
		return ProfileResult{Errors: []string{fmt.Sprintf("Cannot open DXF file: %v", err)}}
	}
	return profileFromDrawing(d)
}

func profileFromDrawing(d *drawing.Drawing) ProfileResult {
	result := ProfileResult{}

	entities := d.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes []shape
	var segments []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToOutline(e)
			if len(outline) >= 3 {
				shapes = append(shapes, shape{outline: outline})
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}
		case *entity.Circle:
			shapes = append(shapes, shape{outline: circleToOutline(e, 64), diameter: 2 * e.Radius})
		case *entity.Arc:
			if pts := arcToPoints(e, 32); len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}
		case *entity.Line:
			segments = append(segments, segment{
				start: geometry.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   geometry.Point2D{X: e.End[0], Y: e.End[1]},
			})
		}
	}
	for _, o := range chainSegments(segments, 0.01) {
		shapes = append(shapes, shape{outline: o})
	}

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	sort.SliceStable(shapes, func(i, j int) bool {
		return shapes[i].outline.Area() > shapes[j].outline.Area()
	})
	outer := shapes[0].outline
	w, h := outer.Size()
	if w < 0.01 || h < 0.01 {
		result.Errors = append(result.Errors, fmt.Sprintf("Outer boundary is degenerate (%.2f x %.2f mm)", w, h))
		return result
	}

	min, _ := outer.BoundingBox()
	p := &Profile{
		Outer:     outer.Translate(-min.X, -min.Y),
		Width:     math.Min(w, h),
		Length:    math.Max(w, h),
		Area:      outer.Area(),
		CutLength: outer.Perimeter(),
	}
	for _, s := range shapes[1:] {
		if !outer.Inside(s.outline) {
			result.Warnings = append(result.Warnings, "Skipped shape outside the outer boundary")
			continue
		}
		p.Cutouts = append(p.Cutouts, s.outline.Translate(-min.X, -min.Y))
		p.Area -= s.outline.Area()
		p.CutLength += s.outline.Perimeter()
		if s.diameter > 0 {
			p.HoleDiameters = append(p.HoleDiameters, s.diameter)
		}
	}
	result.Profile = p
	return result
}

// lwPolylineToOutline converts an LWPOLYLINE. Bulge values on vertices
// produce interpolated arc segments.
func lwPolylineToOutline(lw *entity.LwPolyline) geometry.Outline {
	var outline geometry.Outline
	for i, v := range lw.Vertices {
		current := geometry.Point2D{X: v[0], Y: v[1]}
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) > 1e-9 {
			next := lw.Vertices[(i+1)%len(lw.Vertices)]
			arc := bulgeArcPoints(current, geometry.Point2D{X: next[0], Y: next[1]}, bulge, 32)
			outline = append(outline, arc[:len(arc)-1]...)
		} else {
			outline = append(outline, current)
		}
	}
	return outline
}

// bulgeArcPoints samples the arc between two vertices. The bulge is the
// tangent of a quarter of the included angle; negative bulges run clockwise.
func bulgeArcPoints(p1, p2 geometry.Point2D, bulge float64, n int) geometry.Outline {
	mx, my := (p1.X+p2.X)/2, (p1.Y+p2.Y)/2
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return geometry.Outline{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2
	px, py := -dy/chord, dx/chord
	if bulge > 0 {
		px, py = -px, -py
	}
	dist := radius - sagitta
	cx, cy := mx+px*dist, my+py*dist

	start := math.Atan2(p1.Y-cy, p1.X-cx)
	end := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 && end > start {
		end -= 2 * math.Pi
	} else if bulge > 0 && end < start {
		end += 2 * math.Pi
	}

	pts := make(geometry.Outline, 0, n+1)
	for i := 0; i <= n; i++ {
		a := start + float64(i)/float64(n)*(end-start)
		pts = append(pts, geometry.Point2D{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)})
	}
	return pts
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(c *entity.Circle, n int) geometry.Outline {
	outline := make(geometry.Outline, n)
	for i := range outline {
		a := 2 * math.Pi * float64(i) / float64(n)
		outline[i] = geometry.Point2D{X: c.Center[0] + c.Radius*math.Cos(a), Y: c.Center[1] + c.Radius*math.Sin(a)}
	}
	return outline
}

// arcToPoints samples an ARC entity counter-clockwise from start to end angle.
func arcToPoints(a *entity.Arc, n int) []geometry.Point2D {
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	pts := make([]geometry.Point2D, n+1)
	for i := range pts {
		t := start + float64(i)/float64(n)*(end-start)
		pts[i] = geometry.Point2D{
			X: a.Circle.Center[0] + a.Circle.Radius*math.Cos(t),
			Y: a.Circle.Center[1] + a.Circle.Radius*math.Sin(t),
		}
	}
	return pts
}

func pointsToSegments(pts []geometry.Point2D) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments joins segments whose endpoints lie within tolerance into
// closed outlines, largest first. Open chains are dropped.
func chainSegments(segs []segment, tolerance float64) []geometry.Outline {
	used := make([]bool, len(segs))
	var outlines []geometry.Outline

	for start := range segs {
		if used[start] {
			continue
		}
		used[start] = true
		chain := []geometry.Point2D{segs[start].start, segs[start].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, s := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, s.start, tolerance):
					chain = append(chain, s.end)
				case pointsClose(tail, s.end, tolerance):
					chain = append(chain, s.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, geometry.Outline(chain[:len(chain)-1]))
		}
	}

	sort.Slice(outlines, func(i, j int) bool {
		return outlines[i].Area() > outlines[j].Area()
	})
	return outlines
}

func pointsClose(a, b geometry.Point2D, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}
