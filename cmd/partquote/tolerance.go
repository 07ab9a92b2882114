package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toleranceFlags quoteFlags

var toleranceCmd = &cobra.Command{
	Use:   "tolerance [file]",
	Short: "Check whether a tolerance class is achievable",
	Long:  "Assess a tolerance class against the part's features and material, with per-feature tolerances, GD&T costs and a stack-up estimate.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTolerance,
}

func init() {
	toleranceFlags.register(toleranceCmd)
	rootCmd.AddCommand(toleranceCmd)
}

func runTolerance(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	g, err := a.engine.AnalyzeFile(cmd.Context(), args[0], toleranceFlags.analyzeOptions())
	if err != nil {
		return err
	}
	in, err := toleranceFlags.input(a, g)
	if err != nil {
		return err
	}
	f := a.engine.AnalyzeToleranceFeasibility(g, in.Tolerance, in.MaterialCode)
	if jsonOutput {
		return printJSON(f)
	}

	verdict := "achievable"
	if !f.IsAchievable {
		verdict = "NOT achievable"
	}
	fmt.Printf("Tolerance %s is %s\n", f.ToleranceClass, verdict)
	fmt.Printf("Capability: +/-%.3f mm\n", f.CapabilityIndex)
	fmt.Printf("Required process: %s\n", f.RequiredProcess)
	fmt.Printf("Additional cost: %.0f%%\n", f.AdditionalCostPercent)

	if len(f.FeatureTolerances) > 0 {
		fmt.Println("\nFeatures:")
		for _, ft := range f.FeatureTolerances {
			status := "ok"
			if !ft.Achievable {
				status = "at risk"
			}
			fmt.Printf("  %-16s +/-%.3f mm  %s\n", ft.Feature, ft.Tolerance, status)
		}
	}
	if s := f.StackUp; s != nil {
		fmt.Printf("\nStack-up over %d features: worst case +/-%.3f mm, RSS +/-%.3f mm\n", s.ChainLength, s.WorstCase, s.RSS)
	}
	for _, c := range f.GDTCosts {
		fmt.Printf("GD&T %s: +%.0f%%\n", c.Characteristic, c.CostPercent)
	}
	for _, c := range f.Concerns {
		fmt.Printf("Concern: %s\n", c)
	}
	for _, r := range f.Recommendations {
		fmt.Printf("Recommendation: %s\n", r)
	}
	return nil
}
