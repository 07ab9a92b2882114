package main

import (
	"fmt"
	"path/filepath"

	"github.com/piwi3910/partquote/internal/project"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent quotes",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "count", "n", 20, "Number of quotes to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	h, err := project.LoadHistory(project.DefaultHistoryPath())
	if err != nil {
		return err
	}
	entries := h.Entries
	if historyLimit > 0 && len(entries) > historyLimit {
		entries = entries[:historyLimit]
	}
	if jsonOutput {
		return printJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No quotes yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-10s  %-24s  %-18s  %-8s  qty %-5d  unit %10.2f  total %12.2f\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"), e.QuoteID[:min(8, len(e.QuoteID))], filepath.Base(e.File),
			e.Process, e.Material, e.Quantity, e.UnitPrice, e.Total)
	}
	return nil
}
