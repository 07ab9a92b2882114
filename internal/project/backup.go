package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/piwi3910/partquote/internal/model"
)

// BackupVersion is written into every export. Imports accept any version
// with the same major number.
const BackupVersion = "1.0.0"

// ErrBackupVersion is wrapped when a backup is missing its version or was
// written by an incompatible release.
var ErrBackupVersion = errors.New("unsupported backup version")

// BackupData bundles everything needed to move a PartQuote setup to another
// machine. Quote history stays local.
type BackupData struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Config    model.AppConfig `json:"config"`
	Catalog   model.Catalog   `json:"catalog"`
	Presets   []QuotePreset   `json:"presets,omitempty"`
}

// ExportAllData writes config, catalog and presets to one JSON file,
// creating parent directories as needed.
func ExportAllData(path string, config model.AppConfig, cat model.Catalog, presets []QuotePreset) error {
	err := writeJSON(path, BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Catalog:   cat,
		Presets:   presets,
	})
	if err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// ImportAllData reads a backup. Config fields missing from the file keep
// their defaults, and a backup without materials carries the default
// catalog. Applying the result is up to the caller.
func ImportAllData(path string) (BackupData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BackupData{}, fmt.Errorf("reading backup: %w", err)
	}
	backup := BackupData{Config: model.DefaultAppConfig()}
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("parsing backup: %w", err)
	}
	if major(backup.Version) != major(BackupVersion) {
		return BackupData{}, fmt.Errorf("%w: %q", ErrBackupVersion, backup.Version)
	}

	if backup.Config.RecentFiles == nil {
		backup.Config.RecentFiles = []string{}
	}
	if len(backup.Catalog.Materials) == 0 {
		backup.Catalog = model.DefaultCatalog()
	}
	return backup, nil
}

func major(version string) string {
	m, _, _ := strings.Cut(version, ".")
	return m
}
