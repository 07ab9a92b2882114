package engine

import (
	"errors"
	"math"
	"regexp"
	"strconv"

	"github.com/piwi3910/partquote/internal/model"
)

// stepFillFactor is the assumed part volume over bounding box volume for
// geometry known only by its extents.
const stepFillFactor = 0.6

var cartesianPoint = regexp.MustCompile(`CARTESIAN_POINT\s*\(\s*'[^']*'\s*,\s*\(\s*([-+0-9.eE]+)\s*,\s*([-+0-9.eE]+)\s*(?:,\s*([-+0-9.eE]+)\s*)?\)`)

// ErrNoCoordinates is returned when a STEP file holds no usable points.
var ErrNoCoordinates = errors.New("no CARTESIAN_POINT coordinates found")

// EstimateSTEP derives a coarse summary from the CARTESIAN_POINT entities of
// a STEP file. Coordinates are taken as millimetres.
func EstimateSTEP(data []byte) (model.RemoteSummary, error) {
	min := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	var n int

	for _, m := range cartesianPoint.FindAllSubmatch(data, -1) {
		var p [3]float64
		ok := true
		for i := 0; i < 3; i++ {
			if len(m[i+1]) == 0 {
				continue
			}
			v, err := strconv.ParseFloat(string(m[i+1]), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				ok = false
				break
			}
			p[i] = v
		}
		if !ok {
			continue
		}
		for i := range p {
			min[i] = math.Min(min[i], p[i])
			max[i] = math.Max(max[i], p[i])
		}
		n++
	}
	if n == 0 {
		return model.RemoteSummary{}, ErrNoCoordinates
	}

	dims := model.Point3D{X: max[0] - min[0], Y: max[1] - min[1], Z: max[2] - min[2]}
	bb := model.NewBoundingBox(model.Point3D{}, dims)
	return model.RemoteSummary{
		Volume:      bb.Volume() * stepFillFactor,
		SurfaceArea: bb.SurfaceArea(),
		Dimensions:  dims,
	}, nil
}
