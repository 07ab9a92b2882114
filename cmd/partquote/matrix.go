package main

import (
	"fmt"
	"path/filepath"

	"github.com/piwi3910/partquote/internal/export"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/spf13/cobra"
)

var (
	matrixFlags      quoteFlags
	matrixQuantities []int
	matrixXLSX       string
)

var matrixCmd = &cobra.Command{
	Use:   "matrix [file]",
	Short: "Price a part across quantities",
	Long:  "Quote the same part at several quantities to show how setup amortization and volume discounts change the unit price.",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatrix,
}

func init() {
	matrixFlags.register(matrixCmd)
	matrixCmd.Flags().IntSliceVar(&matrixQuantities, "quantities", model.DefaultMatrixQuantities, "Quantities to price")
	matrixCmd.Flags().StringVar(&matrixXLSX, "xlsx", "", "Write the matrix to an Excel workbook")
	rootCmd.AddCommand(matrixCmd)
}

func runMatrix(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	file := args[0]
	g, err := a.engine.AnalyzeFile(cmd.Context(), file, matrixFlags.analyzeOptions())
	if err != nil {
		return err
	}
	in, err := matrixFlags.input(a, g)
	if err != nil {
		return err
	}
	entries, err := a.engine.CalculatePriceMatrix(in, matrixQuantities)
	if err != nil {
		return err
	}

	if matrixXLSX != "" {
		b, err := a.engine.CalculatePricing(in)
		if err != nil {
			return err
		}
		results := []model.QuoteResult{{
			Request:   model.QuoteRequest{File: file},
			Geometry:  g,
			Breakdown: b,
			Matrix:    entries,
		}}
		if err := export.ExportQuotesXLSX(matrixXLSX, results); err != nil {
			return err
		}
	}

	if jsonOutput {
		return printJSON(entries)
	}
	fmt.Printf("Price matrix for %s (%s)\n\n", filepath.Base(file), g.RecommendedProcess)
	fmt.Printf("%10s  %16s  %16s\n", "Quantity", "Unit", "Total")
	for _, e := range entries {
		fmt.Printf("%10d  %16s  %16s\n", e.Quantity, money(a.cfg, e.PricePerUnit), money(a.cfg, e.TotalPrice))
	}
	return nil
}
