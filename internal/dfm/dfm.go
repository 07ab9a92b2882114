// Package dfm turns detected features into design-for-manufacturing issues
// and recommended secondary operations.
package dfm

import (
	"fmt"
	"sort"

	"github.com/piwi3910/partquote/internal/model"
)

// Issues returns the DFM findings for an analyzed part, most severe first.
func Issues(g *model.GeometryData, th model.DFMThresholds) []model.DFMIssue {
	var out []model.DFMIssue
	adv := g.AdvancedFeatures
	fm := g.FeatureMap

	if n := fm.Count(model.KindThinWalls); n > 0 {
		t := adv.MinWallThickness
		sev := model.SeverityInfo
		switch {
		case t > 0 && t < th.ThinWallCritical:
			sev = model.SeverityCritical
		case t > 0 && t < th.ThinWallWarning:
			sev = model.SeverityWarning
		}
		out = append(out, model.DFMIssue{
			Type:           "thin-wall",
			Severity:       sev,
			FeatureKind:    model.KindThinWalls,
			Count:          n,
			Message:        fmt.Sprintf("%d thin wall region(s), thinnest %.2f mm", n, t),
			Recommendation: "keep metal walls at 1 mm or more and plastic walls at 1.5 mm or more",
		})
	}

	if n := adv.Pockets.Count; n > 0 {
		r := adv.Pockets.MaxDepthRatio
		sev := model.SeverityInfo
		switch {
		case r > th.PocketRatioCritical:
			sev = model.SeverityCritical
		case r > th.PocketRatioWarning:
			sev = model.SeverityWarning
		}
		out = append(out, model.DFMIssue{
			Type:           "deep-pocket",
			Severity:       sev,
			FeatureKind:    model.KindPockets,
			Count:          n,
			Message:        fmt.Sprintf("%d pocket(s), deepest at %.1fx its width", n, r),
			Recommendation: "limit pocket depth to 4x the narrowest width",
		})
	}

	if r := adv.Holes.MaxDepthRatio; adv.Holes.Count > 0 && r > th.HoleRatioWarning {
		sev := model.SeverityWarning
		if r > th.HoleRatioCritical {
			sev = model.SeverityCritical
		}
		out = append(out, model.DFMIssue{
			Type:           "deep-hole",
			Severity:       sev,
			FeatureKind:    model.KindHoles,
			Count:          adv.Holes.Count,
			Message:        fmt.Sprintf("hole depth reaches %.1fx diameter (%s)", r, adv.Holes.DrillingMethod),
			Recommendation: "keep drilled depth under 6x diameter or drill from both sides",
		})
	}

	if d := adv.Holes.MinDiameter; adv.Holes.Count > 0 && d > 0 && d < th.SmallHoleDiameter {
		out = append(out, model.DFMIssue{
			Type:           "small-hole",
			Severity:       model.SeverityWarning,
			FeatureKind:    model.KindHoles,
			Count:          adv.Holes.Count,
			Message:        fmt.Sprintf("smallest hole is %.2f mm", d),
			Recommendation: "use holes of 1 mm or larger, micro drills break easily",
		})
	}

	simple := []struct {
		kind       model.FeatureKind
		typ        string
		sev        model.Severity
		msg, recom string
	}{
		{model.KindSharpCorners, "sharp-internal-corner", model.SeverityInfo,
			"sharp internal corners", "add a corner radius of at least one third of the cavity depth"},
		{model.KindUndercuts, "undercut", model.SeverityWarning,
			"undercut surfaces need special tooling or an extra setup", "remove undercuts or design for a standard T-slot cutter"},
		{model.KindToolAccessRestricted, "tool-access", model.SeverityWarning,
			"deep narrow regions restrict tool access", "open up the region or allow a larger corner radius"},
		{model.KindComplexSurfaces, "complex-surface", model.SeverityInfo,
			"freeform surfaces need 3D toolpaths", "expect ball-end finishing time"},
		{model.KindThreads, "thread", model.SeverityInfo,
			"threaded features", "call out standard thread sizes"},
		{model.KindRibs, "rib", model.SeverityInfo,
			"tall ribs", "keep rib height under 3x thickness"},
	}
	for _, s := range simple {
		n := fm.Count(s.kind)
		if n == 0 {
			continue
		}
		out = append(out, model.DFMIssue{
			Type:           s.typ,
			Severity:       s.sev,
			FeatureKind:    s.kind,
			Count:          n,
			Message:        fmt.Sprintf("%d %s", n, s.msg),
			Recommendation: s.recom,
		})
	}

	if size := g.BoundingBox.MaxDim(); size > th.OversizeEnvelope {
		out = append(out, model.DFMIssue{
			Type:           "oversize",
			Severity:       model.SeverityWarning,
			Count:          1,
			Message:        fmt.Sprintf("%.0f mm exceeds the standard %.0f mm machine envelope", size, th.OversizeEnvelope),
			Recommendation: "split the part or request a large-format quote",
		})
	}

	if sm := g.SheetMetalFeatures; sm != nil && sm.SmallHoleCount > 0 {
		out = append(out, model.DFMIssue{
			Type:           "sheet-small-hole",
			Severity:       model.SeverityWarning,
			FeatureKind:    model.KindHoles,
			Count:          sm.SmallHoleCount,
			Message:        fmt.Sprintf("%d hole(s) smaller than the %.2f mm sheet thickness", sm.SmallHoleCount, sm.Thickness),
			Recommendation: "make punched holes at least as wide as the material is thick",
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	return out
}
