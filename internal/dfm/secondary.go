package dfm

import (
	"strings"

	"github.com/piwi3910/partquote/internal/model"
)

// Context is the quote context secondary operations depend on.
type Context struct {
	Material  *model.Material
	Finish    string
	Tolerance model.ToleranceClass
}

// SecondaryOps recommends post-processing for an analyzed part.
func SecondaryOps(g *model.GeometryData, ctx Context) []model.SecondaryOperation {
	var ops []model.SecondaryOperation
	add := func(name, reason string) {
		ops = append(ops, model.SecondaryOperation{Name: name, Reason: reason})
	}

	proc := g.RecommendedProcess
	fm := g.FeatureMap
	matName := ""
	plastic := false
	if ctx.Material != nil {
		matName = strings.ToLower(ctx.Material.Name)
		plastic = ctx.Material.IsPlastic()
	}
	finish := strings.ToLower(ctx.Finish)

	if proc == model.ProcessMilling || proc == model.ProcessTurning || proc == model.ProcessSheetMetal {
		add("deburring", "machined and cut edges carry burrs")
	}
	if fm.Has(model.KindThreads) {
		add("tapping", "threaded features")
	}
	if fm.Has(model.KindHoles) && ctx.Tolerance != model.ToleranceStandard && ctx.Tolerance != "" {
		add("reaming", "holes under a precision tolerance class")
	}
	if strings.Contains(finish, "anodize") {
		add("anodizing", "requested finish")
	}
	if strings.Contains(finish, "powder") {
		add("powder coating", "requested finish")
	}
	if strings.Contains(finish, "passivate") || strings.Contains(matName, "stainless") {
		add("passivation", "stainless steel corrosion resistance")
	}
	if !plastic && (strings.Contains(matName, "hardened") || (strings.Contains(matName, "steel") && fm.Has(model.KindThinWalls))) {
		add("heat treatment", "stress relief or hardening of steel")
	}
	if ctx.Tolerance == model.ToleranceTight {
		add("grinding", "tight tolerance surfaces")
	}
	if sm := g.SheetMetalFeatures; proc == model.ProcessSheetMetal && sm != nil && sm.HoleCount > 0 && sm.Thickness < 3 {
		add("hardware insertion", "thin sheet holes suit press-fit nuts and studs")
	}
	if fm.Has(model.KindToolAccessRestricted) || (fm.Has(model.KindSharpCorners) && ctx.Tolerance == model.ToleranceTight) {
		add("EDM", "sharp internal corners or regions a cutter cannot reach")
	}
	return ops
}
