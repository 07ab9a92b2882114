package main

import (
	"fmt"
	"strings"

	"github.com/piwi3910/partquote/internal/engine"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/spf13/cobra"
)

var (
	compareFlags     quoteFlags
	compareProcesses []string
)

var compareCmd = &cobra.Command{
	Use:   "compare [file]",
	Short: "Compare prices across manufacturing processes",
	Long:  "Price the same part with several processes, regardless of the recommendation, and mark the cheapest one.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompare,
}

func init() {
	compareFlags.register(compareCmd)
	compareCmd.Flags().StringSliceVar(&compareProcesses, "processes", nil, "Processes to compare (default: milling, turning, sheet metal)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var processes []model.Process
	for _, name := range compareProcesses {
		p, ok := model.ParseProcess(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return fmt.Errorf("unknown process %q", name)
		}
		processes = append(processes, p)
	}

	g, err := a.engine.AnalyzeFile(cmd.Context(), args[0], compareFlags.analyzeOptions())
	if err != nil {
		return err
	}
	in, err := compareFlags.input(a, g)
	if err != nil {
		return err
	}
	results, err := a.engine.CompareProcesses(in, processes)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(results)
	}

	best, found := engine.Cheapest(results)
	fmt.Printf("%-20s  %16s  %16s  %6s\n", "Process", "Unit", "Total", "Days")
	for _, r := range results {
		mark := ""
		if r.Recommended {
			mark += " (recommended)"
		}
		if found && r.Process == best.Process {
			mark += " (cheapest)"
		}
		if r.RequiresManualQuote {
			mark += " (manual review)"
		}
		fmt.Printf("%-20s  %16s  %16s  %6d%s\n", r.Process, money(a.cfg, r.UnitPrice), money(a.cfg, r.TotalPrice), r.LeadTimeDays, mark)
	}
	return nil
}
