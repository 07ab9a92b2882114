package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/piwi3910/partquote/internal/engine"
	"github.com/piwi3910/partquote/internal/export"
	"github.com/piwi3910/partquote/internal/importer"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchXLSX    string
	batchLabels  string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch [sheet]",
	Short: "Quote every part listed in a CSV or Excel sheet",
	Long: `Read a quote sheet with one part per row (file, material, quantity, finish,
tolerance, lead time, process) and quote each part. Relative file paths are
resolved against the sheet's directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "Write all quotes to an Excel workbook")
	batchCmd.Flags().StringVar(&batchLabels, "labels", "", "Write a PDF label sheet with QR codes")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 4, "Parts analyzed in parallel")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	imported := importer.ImportSheet(args[0])
	for _, w := range imported.Warnings {
		a.log.Warn("sheet import", zap.String("warning", w))
	}
	if len(imported.Requests) == 0 {
		if len(imported.Errors) > 0 {
			return fmt.Errorf("no parts imported: %s", strings.Join(imported.Errors, "; "))
		}
		return fmt.Errorf("no parts found in %s", args[0])
	}
	for _, e := range imported.Errors {
		a.log.Warn("skipped row", zap.String("error", e))
	}

	results := quoteAll(cmd.Context(), a, imported.Requests, batchWorkers)
	for _, r := range results {
		if r.Breakdown != nil {
			a.remember(r.Request.File, r.Breakdown)
		}
	}

	if batchXLSX != "" {
		if err := export.ExportQuotesXLSX(batchXLSX, results); err != nil {
			return err
		}
	}
	if batchLabels != "" {
		if err := export.ExportLabels(batchLabels, results); err != nil {
			return err
		}
	}

	if jsonOutput {
		return printJSON(results)
	}
	var total float64
	fmt.Printf("%-28s  %-18s  %6s  %16s  %16s\n", "Part", "Process", "Qty", "Unit", "Total")
	for _, r := range results {
		name := filepath.Base(r.Request.File)
		if r.Error != "" {
			fmt.Printf("%-28s  ERROR: %s\n", name, r.Error)
			continue
		}
		b := r.Breakdown
		fmt.Printf("%-28s  %-18s  %6d  %16s  %16s\n", name, b.Process, b.Quantity, money(a.cfg, b.UnitPrice), money(a.cfg, b.TotalPrice))
		total += b.TotalPrice
	}
	fmt.Printf("\nBatch total: %s\n", money(a.cfg, total))
	return nil
}

// quoteAll prices requests on a bounded worker pool. Results keep the input
// order; a failed part carries its error instead of a breakdown.
func quoteAll(ctx context.Context, a *app, reqs []model.QuoteRequest, workers int) []model.QuoteResult {
	results := make([]model.QuoteResult, len(reqs))
	sem := make(chan struct{}, max(workers, 1))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = quoteOne(ctx, a, req)
		}()
	}
	wg.Wait()
	return results
}

func quoteOne(ctx context.Context, a *app, req model.QuoteRequest) model.QuoteResult {
	res := model.QuoteResult{Request: req}
	in, err := requestInput(req)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	opts := engine.AnalyzeOptions{
		Material:  in.MaterialCode,
		Finish:    in.FinishCode,
		Quantity:  in.Quantity,
		Tolerance: in.Tolerance,
	}
	g, err := a.engine.AnalyzeFile(ctx, req.File, opts)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Geometry = g
	in.Geometry = g
	a.cfg.ApplyDefaults(&in)

	if res.Breakdown, err = a.engine.CalculatePricing(in); err != nil {
		res.Error = err.Error()
		return res
	}
	if res.Matrix, err = a.engine.CalculatePriceMatrix(in, model.DefaultMatrixQuantities); err != nil {
		a.log.Warn("price matrix failed", zap.String("file", req.File), zap.Error(err))
	}
	return res
}

// requestInput converts the free-text sheet columns.
func requestInput(req model.QuoteRequest) (model.PricingInput, error) {
	in := model.PricingInput{
		MaterialCode: req.Material,
		FinishCode:   req.Finish,
		Quantity:     req.Quantity,
	}
	var ok bool
	if in.Tolerance, ok = model.ParseToleranceClass(strings.ToLower(req.Tolerance)); !ok {
		return in, fmt.Errorf("unknown tolerance class %q", req.Tolerance)
	}
	if in.LeadTime, ok = model.ParseLeadTime(strings.ToLower(req.LeadTime)); !ok {
		return in, fmt.Errorf("unknown lead time %q", req.LeadTime)
	}
	if req.Process != "" {
		if in.Process, ok = model.ParseProcess(strings.ToLower(req.Process)); !ok {
			return in, fmt.Errorf("unknown process %q", req.Process)
		}
	}
	return in, nil
}
