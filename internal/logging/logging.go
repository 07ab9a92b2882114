// Package logging builds the zap loggers used across the engine.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/piwi3910/partquote/internal/model"
)

// Config holds logging configuration.
type Config struct {
	Level       string   `json:"level"`
	Format      string   `json:"format"` // "json" or "console"
	OutputPaths []string `json:"output_paths"`
	Development bool     `json:"development"`
}

// FromModel converts the persisted log settings.
func FromModel(c model.LogConfig) Config {
	return Config{Level: c.Level, Format: c.Format, Development: c.Development}
}

// NewLogger creates a structured logger. An unknown level falls back to info.
func NewLogger(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		zapConfig.Encoding = "json"
	}

	// CLI output goes to stdout, so logs stay on stderr.
	zapConfig.OutputPaths = []string{"stderr"}
	if len(config.OutputPaths) > 0 {
		zapConfig.OutputPaths = config.OutputPaths
	}

	return zapConfig.Build()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
