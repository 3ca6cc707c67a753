// Package config handles importer configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Config holds all importer settings.
type Config struct {
	Import  ImportConfig  `yaml:"import" toml:"import"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ImportConfig holds asset import settings.
type ImportConfig struct {
	ContentDirs  []string `yaml:"content_dirs" toml:"content_dirs"` // Fallback roots for relative URIs
	DecodeImages bool     `yaml:"decode_images" toml:"decode_images"`
	Workers      int      `yaml:"workers" toml:"workers"` // Background import workers
}

// WatchConfig holds file watcher settings.
type WatchConfig struct {
	Debounce      Duration `yaml:"debounce" toml:"debounce"`
	DrainInterval Duration `yaml:"drain_interval" toml:"drain_interval"`
}

// Duration is a time.Duration written as a string such as "250ms" in
// both YAML and TOML files.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration the way UnmarshalText reads it.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	BufferName string `yaml:"buffer_name" toml:"buffer_name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			ContentDirs:  nil,
			DecodeImages: true,
			Workers:      2,
		},
		Watch: WatchConfig{
			Debounce:      Duration{100 * time.Millisecond},
			DrainInterval: Duration{250 * time.Millisecond},
		},
		Export: ExportConfig{
			BufferName: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
