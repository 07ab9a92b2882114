package project

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/piwi3910/partquote/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultMaterial = "SS304"
	cfg.CacheCapacity = 32
	cfg.Remote.URL = "http://extract.local/api"
	cfg.Thresholds.SheetMetal.WaterjetThickness = 30
	cfg.RecentFiles = []string{"/tmp/a.stl", "/tmp/b.step"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultMaterial != "SS304" {
		t.Errorf("expected DefaultMaterial=SS304, got %s", loaded.DefaultMaterial)
	}
	if loaded.CacheCapacity != 32 {
		t.Errorf("expected CacheCapacity=32, got %d", loaded.CacheCapacity)
	}
	if loaded.Remote.URL != "http://extract.local/api" {
		t.Errorf("expected remote URL to round-trip, got %q", loaded.Remote.URL)
	}
	if loaded.Thresholds.SheetMetal.WaterjetThickness != 30 {
		t.Errorf("expected WaterjetThickness=30, got %f", loaded.Thresholds.SheetMetal.WaterjetThickness)
	}
	if len(loaded.RecentFiles) != 2 {
		t.Errorf("expected 2 recent files, got %d", len(loaded.RecentFiles))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.DefaultMaterial != defaults.DefaultMaterial {
		t.Errorf("expected default material %s, got %s", defaults.DefaultMaterial, cfg.DefaultMaterial)
	}
	if cfg.Remote.TimeoutSeconds != 30 {
		t.Errorf("expected remote timeout 30, got %d", cfg.Remote.TimeoutSeconds)
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"default_finish":"anodize"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.DefaultFinish != "anodize" {
		t.Errorf("expected finish anodize, got %s", cfg.DefaultFinish)
	}
	defaults := model.DefaultAppConfig()
	if !reflect.DeepEqual(cfg.Thresholds, defaults.Thresholds) {
		t.Error("expected thresholds to keep their defaults")
	}
	if cfg.CacheCapacity != defaults.CacheCapacity {
		t.Errorf("expected cache capacity %d, got %d", defaults.CacheCapacity, cfg.CacheCapacity)
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "config.json")

	cfg := model.DefaultAppConfig()
	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestLoadAppConfigNilRecentFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	data := []byte(`{"default_material":"AL7075","recent_files":null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.RecentFiles == nil {
		t.Error("RecentFiles should not be nil after loading")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvRemoteURL, " http://cad.example:8080/extract ")
	t.Setenv(EnvRemoteTimeout, "12")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg := model.DefaultAppConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Remote.URL != "http://cad.example:8080/extract" {
		t.Errorf("unexpected remote URL %q", cfg.Remote.URL)
	}
	if cfg.Remote.TimeoutSeconds != 12 {
		t.Errorf("expected timeout 12, got %d", cfg.Remote.TimeoutSeconds)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Log.Level)
	}
}

func TestApplyEnvInvalidTimeout(t *testing.T) {
	t.Setenv(EnvRemoteTimeout, "soon")
	cfg := model.DefaultAppConfig()
	if err := ApplyEnv(&cfg); err == nil {
		t.Fatal("expected error for non-numeric timeout")
	}
	if cfg.Remote.TimeoutSeconds != 30 {
		t.Errorf("timeout should be unchanged, got %d", cfg.Remote.TimeoutSeconds)
	}
}

func TestLoadEffectiveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := model.DefaultAppConfig()
	cfg.Remote.URL = "http://from-file"
	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvRemoteURL, "http://from-env")

	loaded, err := LoadEffectiveConfig(path)
	if err != nil {
		t.Fatalf("LoadEffectiveConfig failed: %v", err)
	}
	if loaded.Remote.URL != "http://from-env" {
		t.Errorf("environment should win, got %q", loaded.Remote.URL)
	}
}
