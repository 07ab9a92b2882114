package main

import (
	"fmt"
	"path/filepath"

	"github.com/piwi3910/partquote/internal/export"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	priceFlags  quoteFlags
	pricePDF    string
	priceLabels string
	priceDXF    string
)

var priceCmd = &cobra.Command{
	Use:   "price [file]",
	Short: "Quote a part",
	Long:  "Analyze a part and print an itemized quote. The quote can also be written as a PDF report, a label sheet and a flat-pattern DXF.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrice,
}

func init() {
	priceFlags.register(priceCmd)
	priceCmd.Flags().StringVar(&pricePDF, "pdf", "", "Write a PDF quote report")
	priceCmd.Flags().StringVar(&priceLabels, "labels", "", "Write a PDF label sheet with QR codes")
	priceCmd.Flags().StringVar(&priceDXF, "dxf", "", "Write the flat pattern as DXF (sheet metal only)")
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	file := args[0]
	g, err := a.engine.AnalyzeFile(cmd.Context(), file, priceFlags.analyzeOptions())
	if err != nil {
		return err
	}
	in, err := priceFlags.input(a, g)
	if err != nil {
		return err
	}
	b, err := a.engine.CalculatePricing(in)
	if err != nil {
		return err
	}
	a.remember(file, b)

	if err := writePriceExports(a, file, g, in, b); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(b)
	}
	printBreakdown(a.cfg, b)
	return nil
}

func writePriceExports(a *app, file string, g *model.GeometryData, in model.PricingInput, b *model.PricingBreakdown) error {
	if pricePDF != "" {
		matrix, err := a.engine.CalculatePriceMatrix(in, model.DefaultMatrixQuantities)
		if err != nil {
			return err
		}
		tol := a.engine.AnalyzeToleranceFeasibility(g, in.Tolerance, in.MaterialCode)
		doc := export.QuoteDocument{
			Title:     filepath.Base(file),
			Geometry:  g,
			Breakdown: b,
			Matrix:    matrix,
			Tolerance: &tol,
			Currency:  a.cfg.Currency,
		}
		if b.Process == model.ProcessSheetMetal {
			if layout, ok := a.engine.SheetLayout(g, b.Quantity); ok {
				doc.Layout = layout
			}
		}
		if err := export.ExportQuotePDF(pricePDF, doc); err != nil {
			return err
		}
		a.log.Info("wrote quote report", zap.String("path", pricePDF))
	}
	if priceLabels != "" {
		results := []model.QuoteResult{{Request: model.QuoteRequest{File: file}, Geometry: g, Breakdown: b}}
		if err := export.ExportLabels(priceLabels, results); err != nil {
			return err
		}
		a.log.Info("wrote labels", zap.String("path", priceLabels))
	}
	if priceDXF != "" {
		fp, err := export.FlatPatternFromGeometry(g)
		if err != nil {
			return err
		}
		if err := export.ExportFlatPatternDXF(priceDXF, fp); err != nil {
			return err
		}
		a.log.Info("wrote flat pattern", zap.String("path", priceDXF))
	}
	return nil
}

func printBreakdown(cfg model.AppConfig, b *model.PricingBreakdown) {
	fmt.Println("Quote")
	fmt.Println("=====")
	fmt.Printf("Quote ID: %s\n", b.QuoteID)
	fmt.Printf("Process: %s\n", b.Process)
	fmt.Printf("Material: %s  Finish: %s\n", b.Material, b.Finish)
	fmt.Printf("Quantity: %d  Tolerance: %s  Lead time: %s\n\n", b.Quantity, b.Tolerance, b.LeadTime)

	fmt.Println("Cost per unit:")
	rows := []struct {
		label string
		value float64
	}{
		{"Material", b.MaterialCost},
		{"Labor", b.LaborCost},
		{"Setup", b.SetupCost},
		{"Tooling", b.ToolingCost},
		{"Finish", b.FinishCost},
		{"Inspection", b.InspectionCost},
		{"Overhead", b.Overhead},
		{"Complexity", b.ComplexityAdjustment},
		{"Risk", b.RiskAdjustment},
		{"Margin", b.Margin},
	}
	for _, r := range rows {
		fmt.Printf("  %-12s %s\n", r.label, money(cfg, r.value))
	}
	fmt.Printf("  %-12s %s\n\n", "Subtotal", money(cfg, b.Subtotal))

	fmt.Printf("Volume discount: -%s\n", money(cfg, b.VolumeDiscount))
	fmt.Printf("Tolerance upcharge: +%s\n", money(cfg, b.ToleranceUpcharge))
	fmt.Printf("Lead time multiplier: x%.2f\n\n", b.LeadTimeMultiplier)

	fmt.Printf("Unit price: %s\n", money(cfg, b.UnitPrice))
	fmt.Printf("Total: %s\n", money(cfg, b.TotalPrice))
	fmt.Printf("Lead time: %d working days\n", b.LeadTimeDays.TotalDays)
	if b.SheetsRequired > 0 {
		fmt.Printf("Sheets required: %d\n", b.SheetsRequired)
	}
	if b.RequiresManualQuote {
		fmt.Printf("\nMANUAL REVIEW REQUIRED: %s\n", b.ManualQuoteReason)
	}
	for _, n := range b.Notes {
		fmt.Printf("Note: %s\n", n)
	}
}
