package main

import (
	"fmt"
	"strings"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/piwi3910/partquote/internal/project"
	"github.com/spf13/cobra"
)

var presetFlags quoteFlags

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage named quote presets",
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := project.LoadPresets(project.DefaultPresetsPath())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(presets)
		}
		if len(presets) == 0 {
			fmt.Println("No presets saved.")
			return nil
		}
		for _, p := range presets {
			fmt.Printf("%-20s material=%s finish=%s qty=%d tolerance=%s lead=%s process=%s\n",
				p.Name, orNone(p.Material), orNone(p.Finish), p.Quantity,
				orNone(string(p.Tolerance)), orNone(string(p.LeadTime)), orNone(string(p.Process)))
		}
		return nil
	},
}

var presetSaveCmd = &cobra.Command{
	Use:   "save [name]",
	Short: "Save or replace a preset from the given quote options",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := presetFromFlags(args[0])
		if err != nil {
			return err
		}
		path := project.DefaultPresetsPath()
		presets, err := project.LoadPresets(path)
		if err != nil {
			return err
		}
		if presets, err = project.UpsertPreset(presets, p); err != nil {
			return err
		}
		if err := project.SavePresets(path, presets); err != nil {
			return err
		}
		fmt.Printf("Saved preset %q\n", p.Name)
		return nil
	},
}

var presetExportCmd = &cobra.Command{
	Use:   "export [name] [file]",
	Short: "Export one preset for sharing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := project.LoadPresets(project.DefaultPresetsPath())
		if err != nil {
			return err
		}
		p, ok := project.FindPreset(presets, args[0])
		if !ok {
			return fmt.Errorf("preset %q not found", args[0])
		}
		return project.ExportPreset(args[1], p)
	},
}

var presetImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a shared preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := project.ImportPreset(args[0])
		if err != nil {
			return err
		}
		path := project.DefaultPresetsPath()
		presets, err := project.LoadPresets(path)
		if err != nil {
			return err
		}
		if presets, err = project.UpsertPreset(presets, p); err != nil {
			return err
		}
		if err := project.SavePresets(path, presets); err != nil {
			return err
		}
		fmt.Printf("Imported preset %q\n", p.Name)
		return nil
	},
}

func presetFromFlags(name string) (project.QuotePreset, error) {
	p := project.QuotePreset{
		Name:     name,
		Material: presetFlags.material,
		Finish:   presetFlags.finish,
		Quantity: presetFlags.quantity,
	}
	var ok bool
	if presetFlags.tolerance != "" {
		if p.Tolerance, ok = model.ParseToleranceClass(strings.ToLower(presetFlags.tolerance)); !ok {
			return p, fmt.Errorf("unknown tolerance class %q", presetFlags.tolerance)
		}
	}
	if presetFlags.leadTime != "" {
		if p.LeadTime, ok = model.ParseLeadTime(strings.ToLower(presetFlags.leadTime)); !ok {
			return p, fmt.Errorf("unknown lead time %q", presetFlags.leadTime)
		}
	}
	if presetFlags.process != "" {
		if p.Process, ok = model.ParseProcess(strings.ToLower(presetFlags.process)); !ok {
			return p, fmt.Errorf("unknown process %q", presetFlags.process)
		}
	}
	return p, nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	presetFlags.register(presetSaveCmd)
	presetCmd.AddCommand(presetListCmd, presetSaveCmd, presetExportCmd, presetImportCmd)
	rootCmd.AddCommand(presetCmd)
}
