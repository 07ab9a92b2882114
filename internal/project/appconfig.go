package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/partquote/internal/model"
)

// Environment variables that override the config file.
const (
	EnvRemoteURL     = "PARTQUOTE_REMOTE_URL"
	EnvRemoteTimeout = "PARTQUOTE_REMOTE_TIMEOUT"
	EnvLogLevel      = "PARTQUOTE_LOG_LEVEL"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.partquote/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".partquote")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	return writeJSON(path, config)
}

// LoadAppConfig reads an AppConfig from the given path. Fields missing from
// the file keep their defaults; a missing file yields DefaultAppConfig.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return model.AppConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if config.RecentFiles == nil {
		config.RecentFiles = []string{}
	}
	return config, nil
}

// ApplyEnv overrides the remote endpoint, remote timeout and log level from
// the environment. Unset variables leave the config untouched.
func ApplyEnv(config *model.AppConfig) error {
	if v, ok := os.LookupEnv(EnvRemoteURL); ok {
		config.Remote.URL = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvRemoteTimeout); ok && strings.TrimSpace(v) != "" {
		secs, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || secs <= 0 {
			return fmt.Errorf("%s must be a positive number of seconds, got %q", EnvRemoteTimeout, v)
		}
		config.Remote.TimeoutSeconds = secs
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		config.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	return nil
}

// LoadEffectiveConfig loads the config at path and applies the environment.
func LoadEffectiveConfig(path string) (model.AppConfig, error) {
	config, err := LoadAppConfig(path)
	if err != nil {
		return config, err
	}
	if err := ApplyEnv(&config); err != nil {
		return config, err
	}
	return config, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
