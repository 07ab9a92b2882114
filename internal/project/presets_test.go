package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/partquote/internal/model"
)

func TestSaveAndLoadPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "presets.json")
	presets := []QuotePreset{
		{Name: "Prototype", Material: "AL6061", Quantity: 2, LeadTime: model.LeadTimeExpedited},
		{Name: "Production", Material: "AL7075", Finish: "anodize", Quantity: 500},
	}
	if err := SavePresets(path, presets); err != nil {
		t.Fatalf("SavePresets failed: %v", err)
	}

	loaded, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(loaded))
	}
	if loaded[1].Finish != "anodize" || loaded[1].Quantity != 500 {
		t.Errorf("unexpected preset: %+v", loaded[1])
	}
}

func TestLoadPresetsNonExistent(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if presets == nil || len(presets) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", presets)
	}
}

func TestLoadPresetsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.json")
	if err := os.WriteFile(path, []byte("[{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPresets(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestPresetApplyKeepsExplicitFields(t *testing.T) {
	p := QuotePreset{Name: "aero", Material: "TI64", Finish: "passivate", Quantity: 10, Tolerance: model.ToleranceTight}
	in := model.PricingInput{MaterialCode: "SS316"}
	p.Apply(&in)

	if in.MaterialCode != "SS316" {
		t.Errorf("explicit material should win, got %s", in.MaterialCode)
	}
	if in.FinishCode != "passivate" || in.Quantity != 10 || in.Tolerance != model.ToleranceTight {
		t.Errorf("preset fields not applied: %+v", in)
	}
}

func TestFindAndUpsertPreset(t *testing.T) {
	presets, err := UpsertPreset(nil, QuotePreset{Name: "Shop", Material: "AL6061"})
	if err != nil {
		t.Fatal(err)
	}
	presets, err = UpsertPreset(presets, QuotePreset{Name: "shop", Material: "SS304"})
	if err != nil {
		t.Fatal(err)
	}
	if len(presets) != 1 {
		t.Fatalf("expected replace by name, got %d presets", len(presets))
	}
	p, ok := FindPreset(presets, "SHOP")
	if !ok || p.Material != "SS304" {
		t.Errorf("unexpected preset %+v", p)
	}
	if _, err := UpsertPreset(presets, QuotePreset{}); err == nil {
		t.Error("expected error for a nameless preset")
	}
}

func TestExportAndImportPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.json")
	if err := ExportPreset(path, QuotePreset{Name: "Rush", LeadTime: model.LeadTimeExpedited}); err != nil {
		t.Fatalf("ExportPreset failed: %v", err)
	}
	p, err := ImportPreset(path)
	if err != nil {
		t.Fatalf("ImportPreset failed: %v", err)
	}
	if p.Name != "Rush" || p.LeadTime != model.LeadTimeExpedited {
		t.Errorf("unexpected preset %+v", p)
	}
}

func TestImportPresetNoName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.json")
	if err := os.WriteFile(path, []byte(`{"material":"AL6061"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportPreset(path); err == nil {
		t.Fatal("expected error for preset without name")
	}
}
