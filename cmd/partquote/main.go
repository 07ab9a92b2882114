package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	catalogPath string
	logLevel    string
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "partquote",
	Short: "Instant manufacturing quotes for 3D parts",
	Long: `partquote analyzes STL meshes, STEP files and flat DXF profiles, recommends
a manufacturing process (CNC milling, turning, sheet metal or molding) and
prices the part from the shop catalog. Quotes can be exported as PDF reports,
QR labels, Excel workbooks and flat-pattern DXF.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.partquote/config.json)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Catalog file (default ~/.partquote/catalog.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
