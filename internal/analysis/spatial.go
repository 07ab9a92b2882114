package analysis

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// centroid is a kd-tree point carrying the index of its triangle. The tree
// reorders its backing slice, so the index travels with the point.
type centroid struct {
	C   r3.Vec
	Idx int
}

func (p *centroid) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*centroid)
	switch d {
	case 0:
		return p.C.X - q.C.X
	case 1:
		return p.C.Y - q.C.Y
	case 2:
		return p.C.Z - q.C.Z
	}
	panic("unreachable")
}

func (p *centroid) Dims() int { return 3 }

// Distance returns the squared Euclidean distance, as the tree expects.
func (p *centroid) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.C, c.(*centroid).C))
}

type centroids []centroid

// Index returns the ith element of the list of points.
func (s centroids) Index(i int) kdtree.Comparable { return &s[i] }

// Len returns the length of the list.
func (s centroids) Len() int { return len(s) }

// Pivot partitions the list based on the dimension specified.
func (s centroids) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: d, points: s}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (s centroids) Slice(start, end int) kdtree.Interface { return s[start:end] }

type kdPlane struct {
	dim    kdtree.Dim
	points centroids
}

func (p kdPlane) Less(i, j int) bool {
	return p.points[i].Compare(&p.points[j], p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p kdPlane) Len() int {
	return len(p.points)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// Index answers radius queries over triangle centroids.
type Index struct {
	tree *kdtree.Tree
	n    int
}

// NewIndex builds a kd-tree over the centroids of infos.
func NewIndex(infos []TriangleInfo) *Index {
	pts := make(centroids, len(infos))
	for i, info := range infos {
		pts[i] = centroid{C: info.Centroid, Idx: info.Index}
	}
	idx := &Index{n: len(pts)}
	if len(pts) > 0 {
		idx.tree = kdtree.New(pts, false)
	}
	return idx
}

// Within returns the indices of triangles whose centroid lies within r of q.
func (x *Index) Within(q r3.Vec, r float64) []int {
	if x.tree == nil || r <= 0 {
		return nil
	}
	keeper := kdtree.NewDistKeeper(r * r)
	x.tree.NearestSet(keeper, &centroid{C: q})

	out := make([]int, 0, len(keeper.Heap))
	for _, cd := range keeper.Heap {
		// The keeper seeds its heap with a nil sentinel at the radius.
		if cd.Comparable == nil {
			continue
		}
		out = append(out, cd.Comparable.(*centroid).Idx)
	}
	return out
}
