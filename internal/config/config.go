package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lhaig/treegen/internal/backend"
	"github.com/lhaig/treegen/internal/codegen"
)

// Config is the top-level configuration struct for treegen.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Export    ExportConfig    `mapstructure:"export"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ExportConfig holds code generation settings.
type ExportConfig struct {
	Languages []string `mapstructure:"languages"`
	OutputDir string   `mapstructure:"output_dir"`
	MaxArgs   int      `mapstructure:"max_args"`
	InputMap  bool     `mapstructure:"input_map"`
	// Attr adds the confidence artifact for targets that need one.
	Attr bool `mapstructure:"attr"`
}

// TemplatesConfig points at helper fragments overriding the embedded ones.
type TemplatesConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults.
const (
	DefaultOutputDir     = "."
	DefaultMaxArgs       = codegen.DefaultMaxArgs
	DefaultInputMap      = false
	DefaultAttr          = true
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"
)

// DefaultLanguages is the target list used when none is configured.
func DefaultLanguages() []string {
	return []string{"javascript"}
}

// Sentinel errors for configuration validation.
var (
	// ErrNoLanguages indicates an empty export.languages list.
	ErrNoLanguages = errors.New("export.languages must name at least one target")
	// ErrInvalidMaxArgs indicates export.max_args is not positive.
	ErrInvalidMaxArgs = errors.New("export.max_args must be positive")
	// ErrInvalidLogLevel indicates an unknown logging.level.
	ErrInvalidLogLevel = errors.New("logging.level must be one of debug, info, warn, error")
	// ErrInvalidLogFormat indicates an unknown logging.format.
	ErrInvalidLogFormat = errors.New("logging.format must be text or json")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if len(c.Export.Languages) == 0 {
		return ErrNoLanguages
	}
	if _, err := backend.Resolve(c.Export.Languages); err != nil {
		return fmt.Errorf("export.languages: %w", err)
	}
	if c.Export.MaxArgs <= 0 {
		return ErrInvalidMaxArgs
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return ErrInvalidLogFormat
	}
	return nil
}
