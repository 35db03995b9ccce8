package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644), "failed to create temp config file")

	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultURL, cfg.Source.URL)
	assert.Equal(t, "data", cfg.Output.Dir)
	assert.Equal(t, "raw.json", cfg.Output.File)
	assert.False(t, cfg.Output.Summary)
}

func TestLoad(t *testing.T) {
	path := createTempConfigFile(t, `
source:
  url: "https://example.com/liste"
output:
  dir: "out"
  summary: true
  summary_format: "json"
logging:
  level: "debug"
  file: "./logs/kennzeichen-%Y%m%d.log"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/liste", cfg.Source.URL)
	assert.Equal(t, DefaultUserAgent, cfg.Source.UserAgent, "unset keys keep defaults")
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "raw.json", cfg.Output.File)
	assert.True(t, cfg.Output.Summary)
	assert.Equal(t, "json", cfg.Output.SummaryFormat)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "./logs/kennzeichen-%Y%m%d.log", cfg.Logging.File)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("invalid YAML", func(t *testing.T) {
		_, err := Load(createTempConfigFile(t, "source: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(createTempConfigFile(t, "logging:\n  level: loud\n"))
		assert.True(t, errors.Is(err, ErrInvalidLogLevel), "got %v", err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"empty URL", func(c *Config) { c.Source.URL = "" }, ErrMissingURL},
		{"relative URL", func(c *Config) { c.Source.URL = "/liste" }, ErrInvalidURL},
		{"ftp URL", func(c *Config) { c.Source.URL = "ftp://example.com/liste" }, ErrInvalidURL},
		{"empty data dir", func(c *Config) { c.Output.Dir = "" }, ErrMissingDataDir},
		{"empty file name", func(c *Config) { c.Output.File = "" }, ErrInvalidFileName},
		{"file name with path", func(c *Config) { c.Output.File = "sub/raw.json" }, ErrInvalidFileName},
		{"unknown summary format", func(c *Config) { c.Output.SummaryFormat = "csv" }, ErrInvalidFormat},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }, ErrInvalidLogLevel},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogFormat},
		{"http URL is fine", func(c *Config) { c.Source.URL = "http://localhost:8080/x" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "Validate() = %v, want %v", err, tt.wantErr)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t,
		"Config{URL: "+DefaultURL+", Output: data/raw.json, LogLevel: warn}",
		Default().String())
}
