// Package config handles the confgraph run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is the config file looked up in the working directory.
	DefaultFile = "confgraph.yml"
	// DefaultDatabase is the catalog path used when none is configured.
	DefaultDatabase = "confgraph.db"

	defaultSimilarityThreshold = 0.5
	defaultLookupTimeout       = 60
	defaultDBLPRateLimit       = 2.0
	defaultDBLPHitLimit        = 30
)

// Config is the run configuration read from confgraph.yml.
type Config struct {
	// DatabasePath locates the SQLite catalog. The CONFGRAPH_DB
	// environment variable overrides it.
	DatabasePath string `yaml:"database_path,omitempty"`

	// BibDirs lists the directories scanned for .bib files.
	BibDirs []string `yaml:"bib_dirs,omitempty"`

	// SimilarityThreshold is the minimum name similarity at which an
	// external candidate replaces the local spelling. Must stay in
	// (0, 1].
	SimilarityThreshold float64 `yaml:"similarity_threshold,omitempty"`

	// LookupTimeoutSeconds bounds one external authority lookup.
	LookupTimeoutSeconds int `yaml:"lookup_timeout_seconds,omitempty"`

	DBLP DBLPConfig `yaml:"dblp,omitempty"`
}

// DBLPConfig configures the external authority client.
type DBLPConfig struct {
	// BaseURL overrides the public API endpoint, mainly for tests.
	BaseURL string `yaml:"base_url,omitempty"`

	// RateLimit is the request budget per second.
	RateLimit float64 `yaml:"rate_limit,omitempty"`

	// HitLimit is the number of hits requested per query.
	HitLimit int `yaml:"hit_limit,omitempty"`
}

// Load reads the configuration from path. A missing file is not an
// error: the defaults describe a usable setup.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if env := os.Getenv("CONFGRAPH_DB"); env != "" {
		c.DatabasePath = env
	}
	if c.DatabasePath == "" {
		c.DatabasePath = DefaultDatabase
	}
	c.DatabasePath = ExpandTilde(c.DatabasePath)

	if len(c.BibDirs) == 0 {
		c.BibDirs = []string{"."}
	}
	for i, dir := range c.BibDirs {
		c.BibDirs[i] = ExpandTilde(dir)
	}

	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = defaultSimilarityThreshold
	}
	if c.LookupTimeoutSeconds <= 0 {
		c.LookupTimeoutSeconds = defaultLookupTimeout
	}
	if c.DBLP.RateLimit == 0 {
		c.DBLP.RateLimit = defaultDBLPRateLimit
	}
	if c.DBLP.HitLimit <= 0 {
		c.DBLP.HitLimit = defaultDBLPHitLimit
	}
}

func (c *Config) validate() error {
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold %v out of range (0, 1]", c.SimilarityThreshold)
	}
	if c.DBLP.RateLimit <= 0 {
		return fmt.Errorf("dblp.rate_limit must be positive, got %v", c.DBLP.RateLimit)
	}
	return nil
}

// LookupTimeout returns the configured lookup bound as a duration.
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.LookupTimeoutSeconds) * time.Second
}

// ExpandTilde expands a leading ~ to the user's home directory. Paths
// without a leading ~ come back unchanged.
func ExpandTilde(path string) string {
	if path == "~" || len(path) >= 2 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
