// Package config provides configuration management for the code list scraper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/kennzeichen/internal/scraper"
	"github.com/pfrederiksen/kennzeichen/internal/storage"
)

// Configuration validation errors.
var (
	ErrMissingURL       = errors.New("source.url is required")
	ErrInvalidURL       = errors.New("source.url must be an absolute http(s) URL")
	ErrMissingDataDir   = errors.New("output.dir is required")
	ErrInvalidFileName  = errors.New("output.file must be a plain file name")
	ErrInvalidFormat    = errors.New("output.summary_format must be 'text' or 'json'")
	ErrInvalidLogLevel  = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat = errors.New("logging.format must be 'json' or 'text'")
)

// Defaults used when neither a config file nor a flag overrides them.
const (
	DefaultURL       = scraper.CodeListURL
	DefaultUserAgent = scraper.UserAgent
	DefaultDataDir   = storage.DefaultDataDir
	DefaultFileName  = storage.DefaultFileName
)

// Config represents the complete scraper configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig describes the page the code list is read from.
type SourceConfig struct {
	URL       string `yaml:"url"`
	UserAgent string `yaml:"user_agent"`
}

// OutputConfig defines where the raw data file goes.
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	File          string `yaml:"file"`
	Summary       bool   `yaml:"summary"`
	SummaryFormat string `yaml:"summary_format"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File is a strftime pattern for rotated log files, e.g. ./logs/kennzeichen-%Y%m%d.log
	File string `yaml:"file"`
}

// Default returns the configuration of a plain run.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:       DefaultURL,
			UserAgent: DefaultUserAgent,
		},
		Output: OutputConfig{
			Dir:           DefaultDataDir,
			File:          DefaultFileName,
			SummaryFormat: "text",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "json",
		},
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the
// file keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return ErrMissingURL
	}

	u, err := url.Parse(c.Source.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, c.Source.URL)
	}

	if c.Output.Dir == "" {
		return ErrMissingDataDir
	}

	if c.Output.File == "" || strings.ContainsAny(c.Output.File, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidFileName, c.Output.File)
	}

	if c.Output.SummaryFormat != "text" && c.Output.SummaryFormat != "json" {
		return ErrInvalidFormat
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return ErrInvalidLogFormat
	}

	return nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{URL: %s, Output: %s/%s, LogLevel: %s}",
		c.Source.URL,
		c.Output.Dir,
		c.Output.File,
		c.Logging.Level,
	)
}
