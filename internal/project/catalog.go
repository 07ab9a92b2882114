package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/partquote/internal/model"
)

// DefaultCatalogPath returns the default file path for the shop catalog.
// This is located at ~/.partquote/catalog.json.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveCatalog writes the catalog to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveCatalog(path string, cat model.Catalog) error {
	return writeJSON(path, cat)
}

// LoadCatalog reads the catalog from the specified JSON file.
// If the file does not exist, it returns the default catalog and saves it.
func LoadCatalog(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cat := model.DefaultCatalog()
			if saveErr := SaveCatalog(path, cat); saveErr != nil {
				return cat, saveErr
			}
			return cat, nil
		}
		return model.Catalog{}, err
	}
	var cat model.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return model.Catalog{}, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if len(cat.Materials) == 0 {
		return model.Catalog{}, fmt.Errorf("catalog %s has no materials", path)
	}
	return cat, nil
}

// ExportCatalog exports the catalog to a user-specified JSON file.
func ExportCatalog(path string, cat model.Catalog) error {
	return SaveCatalog(path, cat)
}

// ImportCatalog imports a catalog from a user-specified JSON file, merging
// it with the existing catalog. Entries whose code (or sheet name) already
// exists are skipped.
func ImportCatalog(path string, existing model.Catalog) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Catalog
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}
	return MergeCatalog(existing, imported), nil
}

// MergeCatalog appends the entries of imported that existing lacks.
func MergeCatalog(existing, imported model.Catalog) model.Catalog {
	seen := make(map[string]bool)
	key := func(kind, id string) string { return kind + ":" + strings.ToLower(id) }

	for _, m := range existing.Materials {
		seen[key("m", m.Code)] = true
	}
	for _, f := range existing.Finishes {
		seen[key("f", f.Code)] = true
	}
	for _, p := range existing.Processes {
		seen[key("p", string(p.Process))] = true
	}
	for _, s := range existing.Sheets {
		seen[key("s", s.Name)] = true
	}

	for _, m := range imported.Materials {
		if k := key("m", m.Code); !seen[k] {
			existing.Materials = append(existing.Materials, m)
			seen[k] = true
		}
	}
	for _, f := range imported.Finishes {
		if k := key("f", f.Code); !seen[k] {
			existing.Finishes = append(existing.Finishes, f)
			seen[k] = true
		}
	}
	for _, p := range imported.Processes {
		if k := key("p", string(p.Process)); !seen[k] {
			existing.Processes = append(existing.Processes, p)
			seen[k] = true
		}
	}
	for _, s := range imported.Sheets {
		if k := key("s", s.Name); !seen[k] {
			existing.Sheets = append(existing.Sheets, s)
			seen[k] = true
		}
	}
	return existing
}
