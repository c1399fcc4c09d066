// Package config provides configuration types and defaults for nacre.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/nacre/internal/log"
	"github.com/zjrosen/nacre/internal/paths"
)

// Config holds all configuration options for nacre.
type Config struct {
	Format   string         `mapstructure:"format"` // "auto" (default), "json", or "yaml"
	Registry RegistryConfig `mapstructure:"registry"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// RegistryConfig holds settings for the registry the CLI materializes
// documents through.
type RegistryConfig struct {
	// KeyAttribute is the property models are deduplicated by.
	// Default: "uuid"
	KeyAttribute string `mapstructure:"key_attribute"`

	// AllowOverrides replaces the cached model on a duplicate key instead
	// of reporting an error.
	// Default: false
	AllowOverrides bool `mapstructure:"allow_overrides"`

	// TTL evicts cached models after this duration. Zero keeps them for
	// the life of the process.
	// Default: 0
	TTL time.Duration `mapstructure:"ttl"`
}

// WatchConfig holds settings for `nacre inspect --watch`.
type WatchConfig struct {
	// Debounce coalesces rapid file changes into a single re-render.
	// Default: 250ms
	Debounce time.Duration `mapstructure:"debounce"`
}

// TracingConfig holds trace export configuration for CLI runs.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/nacre/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// 1.0 = all traces, 0.1 = 10% of traces
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns the default path for trace file export.
func DefaultTracesFilePath() string {
	return paths.TracesFile()
}

// ValidateFormat checks the document format option.
// Returns nil if the format is valid or empty (empty uses "auto").
func ValidateFormat(format string) error {
	switch format {
	case "", "auto", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("format must be \"auto\", \"json\", or \"yaml\", got %q", format)
	}
}

// ValidateRegistry checks registry configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateRegistry(reg RegistryConfig) error {
	if reg.TTL < 0 {
		return fmt.Errorf("registry.ttl must not be negative, got %v", reg.TTL)
	}
	return nil
}

// ValidateWatch checks watch configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateWatch(watch WatchConfig) error {
	if watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %v", watch.Debounce)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	// Validate SampleRate is in range [0.0, 1.0]
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	// Validate Exporter is a valid option
	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate endpoint requirements when tracing is enabled
	if tracing.Enabled {
		// OTLPEndpoint is required when Exporter is "otlp"
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Validate checks the whole configuration for errors.
func Validate(cfg Config) error {
	if err := ValidateFormat(cfg.Format); err != nil {
		return err
	}
	if err := ValidateRegistry(cfg.Registry); err != nil {
		return err
	}
	if err := ValidateWatch(cfg.Watch); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Format: "auto",
		Registry: RegistryConfig{
			KeyAttribute:   "uuid",
			AllowOverrides: false,
			TTL:            0,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Nacre Configuration

# Document format: "auto" (default, detect by file extension), "json", or "yaml"
format: auto

# Registry settings
registry:
  # Property models are deduplicated by
  key_attribute: uuid

  # Replace the cached model on a duplicate key instead of reporting an error
  allow_overrides: false

  # Evict cached models after this long (default: keep for the life of the process)
  # ttl: 5m

# Watch settings (nacre inspect --watch)
watch:
  # Coalesce rapid file changes into a single re-render
  debounce: 250ms

# Tracing configuration
# Enables visibility into how documents are loaded and materialized
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/nacre/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
#
# Example: Enable tracing with file export
# tracing:
#   enabled: true
#   exporter: file
#
# Example: Send traces to Jaeger via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1  # Sample 10% of traces
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	// Create parent directory if needed
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write the template
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
