// Package config provides configuration management for the catalognav CLI.
package config

import "github.com/leapstack-labs/catalognav/internal/extractor"

// UIConfig holds configuration for the web UI server.
type UIConfig struct {
	Port     int  `koanf:"port"`
	AutoOpen bool `koanf:"auto_open"`
	Watch    bool `koanf:"watch"`
}

// Config holds all CLI configuration options.
type Config struct {
	ExtractorPath string    `koanf:"extractor"`
	SnapshotPath  string    `koanf:"snapshot_path"`
	NoSnapshot    bool      `koanf:"no_snapshot"`
	Verbose       bool      `koanf:"verbose"`
	LogLevel      string    `koanf:"log_level"`
	OutputFormat  string    `koanf:"output"`
	UI            *UIConfig `koanf:"ui"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultExtractorPath = extractor.DefaultPath
	DefaultSnapshotFile  = ".catalognav/catalog.db"
	DefaultLogLevel      = "warn"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultUIPort        = 8766
)

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:     DefaultUIPort,
		AutoOpen: false,
		Watch:    true,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = DefaultUIPort
	}
	return ui
}

// SnapshotEnabled reports whether catalog snapshots are persisted.
func (c *Config) SnapshotEnabled() bool {
	return !c.NoSnapshot && c.SnapshotPath != ""
}

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		ExtractorPath: DefaultExtractorPath,
		SnapshotPath:  DefaultSnapshotFile,
		LogLevel:      DefaultLogLevel,
		OutputFormat:  DefaultOutput,
		UI:            DefaultUIConfig(),
	}
}
