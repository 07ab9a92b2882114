package main

import (
	"fmt"
	"strings"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/spf13/cobra"
)

var analyzeFlags quoteFlags

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a part and recommend a manufacturing process",
	Long:  "Show dimensions, volume, detected features, the recommended process with its reasoning, DFM issues and secondary operations.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeFlags.register(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	g, err := a.engine.AnalyzeFile(cmd.Context(), args[0], analyzeFlags.analyzeOptions())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(g)
	}
	printGeometry(g)
	return nil
}

func printGeometry(g *model.GeometryData) {
	fmt.Println("Part Analysis")
	fmt.Println("=============")
	if g.Name != "" {
		fmt.Printf("Name: %s\n", g.Name)
	}
	fmt.Printf("Source: %s\n\n", g.Source)

	bb := g.BoundingBox
	fmt.Println("Geometry:")
	fmt.Printf("  Dimensions: %.2f x %.2f x %.2f mm\n", bb.X, bb.Y, bb.Z)
	fmt.Printf("  Volume: %.2f cm3\n", g.Volume/1000)
	fmt.Printf("  Surface Area: %.2f cm2\n", g.SurfaceArea/100)
	if g.TriangleCount > 0 {
		fmt.Printf("  Triangles: %d\n", g.TriangleCount)
	}
	fmt.Printf("  Weight: %.1f g\n", g.MaterialWeight)
	fmt.Printf("  Complexity: %s\n\n", g.Complexity)

	fmt.Println("Process:")
	fmt.Printf("  Recommended: %s (%.0f%% confidence)\n", g.RecommendedProcess, g.ProcessConfidence*100)
	for _, r := range g.ProcessReasoning {
		fmt.Printf("  - %s\n", r)
	}

	if f := g.SheetMetalFeatures; f != nil {
		fmt.Println("\nSheet Metal:")
		fmt.Printf("  Thickness: %.2f mm\n", f.Thickness)
		fmt.Printf("  Flat pattern: %.2f cm2\n", f.FlatPatternArea/100)
		fmt.Printf("  Bends: %d  Holes: %d  Cut length: %.0f mm\n", f.BendCount, f.HoleCount, f.CutLength)
		fmt.Printf("  Cutting: %s  Bending: %s\n", f.CuttingMethod, f.BendingMethod)
	}

	h := g.AdvancedFeatures.Holes
	if h.Count > 0 {
		fmt.Printf("\nHoles: %d\n", h.Count)
	}

	if len(g.DFMIssues) > 0 {
		fmt.Println("\nDFM Issues:")
		for _, issue := range g.DFMIssues {
			fmt.Printf("  [%s] %s\n", strings.ToUpper(string(issue.Severity)), issue.Message)
			if issue.Recommendation != "" {
				fmt.Printf("         %s\n", issue.Recommendation)
			}
		}
	}
	if len(g.SecondaryOps) > 0 {
		fmt.Println("\nSecondary Operations:")
		for _, op := range g.SecondaryOps {
			fmt.Printf("  %s: %s\n", op.Name, op.Reason)
		}
	}
	for _, n := range g.Notes {
		fmt.Printf("Note: %s\n", n)
	}
}
