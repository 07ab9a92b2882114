package main

import (
	"fmt"
	"os"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/piwi3910/partquote/internal/project"
	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage settings, the shop catalog and backups",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config and catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, catPath := effectiveConfigPath(), effectiveCatalogPath()
		for _, p := range []string{cfgPath, catPath} {
			if _, err := os.Stat(p); err == nil && !configForce {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			}
		}
		if err := project.SaveAppConfig(cfgPath, model.DefaultAppConfig()); err != nil {
			return err
		}
		if err := project.SaveCatalog(catPath, model.DefaultCatalog()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\nWrote %s\n", cfgPath, catPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config, including environment overrides",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := project.LoadEffectiveConfig(effectiveConfigPath())
		if err != nil {
			return err
		}
		return printJSON(cfg)
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Back up config, catalog and presets to one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := project.LoadAppConfig(effectiveConfigPath())
		if err != nil {
			return err
		}
		cat, err := project.LoadCatalog(effectiveCatalogPath())
		if err != nil {
			return err
		}
		presets, err := project.LoadPresets(project.DefaultPresetsPath())
		if err != nil {
			return err
		}
		if err := project.ExportAllData(args[0], cfg, cat, presets); err != nil {
			return err
		}
		fmt.Printf("Backup written to %s\n", args[0])
		return nil
	},
}

var configImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Restore config, catalog and presets from a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backup, err := project.ImportAllData(args[0])
		if err != nil {
			return err
		}
		if err := project.SaveAppConfig(effectiveConfigPath(), backup.Config); err != nil {
			return err
		}
		if err := project.SaveCatalog(effectiveCatalogPath(), backup.Catalog); err != nil {
			return err
		}
		if err := project.SavePresets(project.DefaultPresetsPath(), backup.Presets); err != nil {
			return err
		}
		fmt.Printf("Restored backup from %s (created %s)\n", args[0], backup.CreatedAt)
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Share the shop catalog",
}

var catalogExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := project.LoadCatalog(effectiveCatalogPath())
		if err != nil {
			return err
		}
		return project.ExportCatalog(args[0], cat)
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Merge a catalog into the current one",
	Long:  "Add the materials, finishes, process rates and sheets of another catalog. Entries whose code already exists are kept unchanged.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := effectiveCatalogPath()
		existing, err := project.LoadCatalog(path)
		if err != nil {
			return err
		}
		merged, err := project.ImportCatalog(args[0], existing)
		if err != nil {
			return err
		}
		if err := project.SaveCatalog(path, merged); err != nil {
			return err
		}
		fmt.Printf("Catalog now has %d materials, %d finishes, %d sheets\n",
			len(merged.Materials), len(merged.Finishes), len(merged.Sheets))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing files")
	configCmd.AddCommand(configInitCmd, configShowCmd, configExportCmd, configImportCmd)
	catalogCmd.AddCommand(catalogExportCmd, catalogImportCmd)
	rootCmd.AddCommand(configCmd, catalogCmd)
}
