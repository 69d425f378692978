// Package config loads roscope's application configuration from a TOML
// file, with defaults applied for anything unset, plus optional per-project
// analyzer overrides from a YAML file in the analyzed project itself.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	Analyzer AnalyzerConfig `toml:"analyzer"`
	Store    StoreConfig    `toml:"store"`
	Output   OutputConfig   `toml:"output"`
}

// AnalyzerConfig holds settings for the extraction pipeline.
type AnalyzerConfig struct {
	// Concurrency caps the number of extraction tasks running at once.
	Concurrency int `toml:"concurrency"`
}

// StoreConfig holds settings for the analysis result store.
type StoreConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	// CacheTTL is how long stored analyses stay valid, e.g. "1h".
	CacheTTL string `toml:"cache_ttl"`
}

// OutputConfig holds settings for result rendering.
type OutputConfig struct {
	// Format is the default output format: "json" or "markdown".
	Format string `toml:"format"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			Concurrency: 4,
		},
		Store: StoreConfig{
			Enabled:  false,
			CacheTTL: "1h",
		},
		Output: OutputConfig{
			Format: "markdown",
		},
	}
}

// Load reads the config file at path. A missing file is not an error: the
// defaults are returned so a fresh install works without any setup.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Analyzer.Concurrency <= 0 {
		cfg.Analyzer.Concurrency = DefaultConfig().Analyzer.Concurrency
	}
	return cfg, nil
}

// TTL parses the configured cache TTL, falling back to one hour when the
// value is empty or malformed.
func (c StoreConfig) TTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d < 0 {
		return time.Hour
	}
	return d
}
