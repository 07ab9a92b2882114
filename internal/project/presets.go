package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/partquote/internal/model"
)

// QuotePreset is a named set of quote options, such as a customer's usual
// material and finish.
type QuotePreset struct {
	Name      string               `json:"name"`
	Material  string               `json:"material,omitempty"`
	Finish    string               `json:"finish,omitempty"`
	Quantity  int                  `json:"quantity,omitempty"`
	Tolerance model.ToleranceClass `json:"tolerance,omitempty"`
	LeadTime  model.LeadTime       `json:"lead_time,omitempty"`
	Process   model.Process        `json:"process,omitempty"`
}

// Apply fills the empty fields of in from the preset.
func (p QuotePreset) Apply(in *model.PricingInput) {
	if in.MaterialCode == "" {
		in.MaterialCode = p.Material
	}
	if in.FinishCode == "" {
		in.FinishCode = p.Finish
	}
	if in.Quantity == 0 {
		in.Quantity = p.Quantity
	}
	if in.Tolerance == "" {
		in.Tolerance = p.Tolerance
	}
	if in.LeadTime == "" {
		in.LeadTime = p.LeadTime
	}
	if in.Process == "" {
		in.Process = p.Process
	}
}

// DefaultPresetsPath returns the default file path for quote presets.
func DefaultPresetsPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.json")
}

// SavePresets saves presets to a JSON file.
func SavePresets(path string, presets []QuotePreset) error {
	return writeJSON(path, presets)
}

// LoadPresets loads presets from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadPresets(path string) ([]QuotePreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []QuotePreset{}, nil
		}
		return nil, err
	}

	var presets []QuotePreset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

// FindPreset returns the preset with the given name (case-insensitive).
func FindPreset(presets []QuotePreset, name string) (QuotePreset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return QuotePreset{}, false
}

// UpsertPreset replaces the preset of the same name or appends p.
func UpsertPreset(presets []QuotePreset, p QuotePreset) ([]QuotePreset, error) {
	if strings.TrimSpace(p.Name) == "" {
		return presets, errors.New("preset has no name")
	}
	for i := range presets {
		if strings.EqualFold(presets[i].Name, p.Name) {
			presets[i] = p
			return presets, nil
		}
	}
	return append(presets, p), nil
}

// ExportPreset exports a single preset to a JSON file (for sharing).
func ExportPreset(path string, preset QuotePreset) error {
	return writeJSON(path, preset)
}

// ImportPreset imports a single preset from a JSON file.
func ImportPreset(path string) (QuotePreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QuotePreset{}, err
	}

	var preset QuotePreset
	if err := json.Unmarshal(data, &preset); err != nil {
		return QuotePreset{}, fmt.Errorf("failed to parse preset: %w", err)
	}
	if preset.Name == "" {
		return QuotePreset{}, errors.New("imported preset has no name")
	}
	return preset, nil
}
