package analysis

import (
	"math"
	"sort"

	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// grow runs greedy region growing over the triangles accepted by candidate.
// Each call owns its visited set, so a triangle claimed for one kind stays
// available to every other kind.
func grow(infos []TriangleInfo, idx *Index, candidate []bool, radius float64) [][]int {
	visited := make([]bool, len(infos))
	var clusters [][]int
	for seed := range infos {
		if visited[seed] || !candidate[seed] {
			continue
		}
		visited[seed] = true
		queue := []int{seed}
		members := []int{}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)
			for _, j := range idx.Within(infos[cur].Centroid, radius) {
				if visited[j] || !candidate[j] {
					continue
				}
				visited[j] = true
				queue = append(queue, j)
			}
		}
		sort.Ints(members)
		clusters = append(clusters, members)
	}
	return clusters
}

// cluster is a candidate feature with its cached statistics.
type cluster struct {
	members    []int
	centroid   r3.Vec // mean of member centroids
	meanNormal r3.Vec // area-weighted
	bounds     geometry.Bounds
	area       float64
}

func newCluster(infos []TriangleInfo, members []int) cluster {
	c := cluster{members: members, bounds: geometry.NewBounds()}
	var sum, nsum r3.Vec
	for _, i := range members {
		info := infos[i]
		sum = r3.Add(sum, info.Centroid)
		nsum = r3.Add(nsum, r3.Scale(info.Area, info.Normal))
		c.area += info.Area
		for _, v := range info.Vertices {
			c.bounds.Extend(v)
		}
	}
	if len(members) > 0 {
		c.centroid = r3.Scale(1/float64(len(members)), sum)
	}
	if c.area > 0 {
		c.meanNormal = r3.Scale(1/c.area, nsum)
	}
	return c
}

func (c cluster) size() int { return len(c.members) }

// elongation is the ratio of the largest to the middle bounding extent.
func (c cluster) elongation() float64 {
	s := sortedExtents(c.bounds.Size())
	if s[1] <= 1e-9 {
		if s[2] <= 1e-9 {
			return 1
		}
		return math.Inf(1)
	}
	return s[2] / s[1]
}

// consistency is the length of the area-weighted mean normal: 1 for a flat
// patch, near 0 for a closed or strongly curved one.
func (c cluster) consistency() float64 { return r3.Norm(c.meanNormal) }

func (c cluster) location(confidence float64) model.FeatureLocation {
	return model.FeatureLocation{
		TriangleIndices: append([]int(nil), c.members...),
		Centroid:        geometry.ToPoint(c.centroid),
		BoundingBox:     c.bounds.Model(),
		Confidence:      confidence,
	}
}

func sortedExtents(v r3.Vec) [3]float64 {
	s := []float64{v.X, v.Y, v.Z}
	sort.Float64s(s)
	return [3]float64{s[0], s[1], s[2]}
}

// confidence combines cluster size and the strength of the geometric test.
func confidence(size, minSize int, strength, max float64) float64 {
	sizeTerm := math.Min(float64(size)/float64(4*minSize), 1)
	return clamp(0.3+0.3*sizeTerm+0.4*clamp(strength, 0, 1), 0, max)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
