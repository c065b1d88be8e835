package config

import (
	"fmt"
	"log/slog"
	"strings"
)

var validOutputs = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ExtractorPath == "" {
		return fmt.Errorf("extractor path is required")
	}

	if !isValidOutput(c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (valid: %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if ui := c.UI; ui != nil && (ui.Port < 0 || ui.Port > 65535) {
		return fmt.Errorf("invalid ui port %d", ui.Port)
	}

	// The extractor binary is only checked when a command runs it, so that
	// help and completion work on machines without the tool installed.
	return nil
}

func isValidOutput(format string) bool {
	if format == "" {
		return true
	}
	for _, v := range validOutputs {
		if strings.EqualFold(format, v) {
			return true
		}
	}
	return false
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", level)
	}
}
