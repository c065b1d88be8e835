package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("extractor", "", "")
	fs.String("snapshot", "", "")
	fs.Bool("no-snapshot", false, "")
	fs.StringP("output", "o", "", "")
	fs.String("log-level", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.Int("port", 0, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultExtractorPath, cfg.ExtractorPath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultUIPort, cfg.GetUIConfig().Port)
	assert.True(t, cfg.GetUIConfig().Watch)
	assert.True(t, cfg.SnapshotEnabled())
	assert.True(t, filepath.IsAbs(cfg.SnapshotPath))
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := `extractor: /usr/local/bin/extract
snapshot_path: state/catalog.db
output: json
log_level: debug
ui:
  port: 9000
  watch: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalognav.yaml"), []byte(content), 0o600))

	// Config is found by searching upward from a subdirectory.
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	chdir(t, sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/extract", cfg.ExtractorPath)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.GetUIConfig().Port)
	assert.False(t, cfg.GetUIConfig().Watch)

	wantRoot, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(cfg.ProjectRoot)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "state", "catalog.db"), cfg.SnapshotPath)
	assert.NotEmpty(t, GetConfigFileUsed())
}

func TestLoadConfig_ExplicitFileMissing(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := LoadConfig("does-not-exist.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalognav.yaml"), []byte("output: json\n"), 0o600))
	chdir(t, dir)

	t.Setenv("CATALOGNAV_OUTPUT", "markdown")
	t.Setenv("CATALOGNAV_UI__PORT", "7000")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.OutputFormat)
	assert.Equal(t, 7000, cfg.GetUIConfig().Port)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CATALOGNAV_OUTPUT", "markdown")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{
		"--output", "yaml",
		"--extractor", "/tmp/fake-extract",
		"--snapshot", "snap.db",
		"--port", "8123",
		"--log-level", "error",
	}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.OutputFormat)
	assert.Equal(t, "/tmp/fake-extract", cfg.ExtractorPath)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 8123, cfg.GetUIConfig().Port)
	assert.Equal(t, filepath.Join(dir, "snap.db"), cfg.SnapshotPath)
}

func TestLoadConfig_NoSnapshot(t *testing.T) {
	chdir(t, t.TempDir())

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--no-snapshot"}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.False(t, cfg.SnapshotEnabled())
}

func TestLoadConfig_UnsetFlagsIgnored(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("", newFlags())
	require.NoError(t, err)
	assert.Equal(t, DefaultExtractorPath, cfg.ExtractorPath, "unset flags must not clobber defaults")
}

func TestLoadConfig_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--output", "xml"}))

	_, err := LoadConfig("", fs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errSubstr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "empty extractor", mutate: func(c *Config) { c.ExtractorPath = "" }, errSubstr: "extractor path is required"},
		{name: "bad output", mutate: func(c *Config) { c.OutputFormat = "html" }, errSubstr: "invalid output format"},
		{name: "output is case-insensitive", mutate: func(c *Config) { c.OutputFormat = "JSON" }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, errSubstr: "invalid log level"},
		{name: "bad port", mutate: func(c *Config) { c.UI.Port = 70000 }, errSubstr: "invalid ui port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "missing logger falls back to a discard logger")

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}
