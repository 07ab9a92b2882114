package mesh

import (
	"math"

	"github.com/piwi3910/partquote/internal/model"
)

// Summarize derives the global descriptors of a mesh. density is the
// material density in g/cm³; zero uses the table default.
//
// Binary meshes get exact volume and area. Text meshes are estimated from
// their bounding box, which is cheaper and good enough for the coarse files
// that usually arrive in that encoding.
func Summarize(m *Mesh, density float64, th model.MeshThresholds) model.GeometrySummary {
	if density <= 0 {
		density = th.DefaultDensity
	}

	bb := m.Bounds().Model()
	var volume, area float64
	if m.Format == model.FormatText {
		volume = bb.Volume() * th.TextFillFactor
		area = bb.SurfaceArea()
	} else {
		volume = m.Volume()
		area = m.SurfaceArea()
	}

	summary := model.GeometrySummary{
		Volume:        volume,
		SurfaceArea:   area,
		BoundingBox:   bb,
		TriangleCount: m.Len(),
		Complexity:    ClassifyComplexity(m.Len(), area, volume, th),
		Format:        m.Format,
	}
	summary.MaterialWeight = Weight(volume, density)
	summary.EstimatedMachiningTime = MachiningTime(summary, th)
	return summary
}

// ClassifyComplexity grades a part from its triangle count, triangle density
// (triangles per 1000 mm²) and surface/volume ratio.
func ClassifyComplexity(triangles int, area, volume float64, th model.MeshThresholds) model.Complexity {
	var density, ratio float64
	if area > 0 {
		density = float64(triangles) / (area / 1000)
	}
	if volume > 0 {
		ratio = area / volume
	}

	switch {
	case triangles > th.ComplexTriangles,
		density > th.ComplexDensity && ratio > th.ComplexSurfaceRatio:
		return model.ComplexityComplex
	case triangles > th.ModerateTriangles,
		density > th.ModerateDensity,
		ratio > th.ModerateSurfaceRatio:
		return model.ComplexityModerate
	default:
		return model.ComplexitySimple
	}
}

// Weight converts a volume in mm³ to grams.
func Weight(volume, density float64) float64 {
	return volume / 1000 * density
}

// MachiningTime estimates minutes of machining: a fixed setup, bulk removal
// of the stock around the part, and finishing of the surface.
func MachiningTime(s model.GeometrySummary, th model.MeshThresholds) float64 {
	if s.TriangleCount == 0 && s.Volume == 0 {
		return 0
	}
	removed := math.Max(0, s.BoundingBox.Volume()-s.Volume)
	minutes := th.SetupMinutes
	if th.RemovalRate > 0 {
		minutes += removed / th.RemovalRate
	}
	if th.FinishingRate > 0 {
		minutes += s.SurfaceArea / th.FinishingRate
	}
	return minutes
}
