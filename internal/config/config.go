// Package config loads obracost settings from an optional YAML file with
// environment variable overrides. Everything has a default; a missing
// config file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// VarianceThreshold is the fraction of BAC beyond which a cost or
	// schedule variance is flagged critical on reports.
	VarianceThreshold float64 `yaml:"variance_threshold"`

	// DefaultPeriodType is used when a distribution or report request
	// does not name one.
	DefaultPeriodType string `yaml:"default_period_type"`

	// Currency is the default project currency (ISO 4217).
	Currency string `yaml:"currency"`

	// RequireApproval makes progress queries consider approved
	// observations only, falling back to the latest entry when an
	// element has none.
	RequireApproval bool `yaml:"require_approval"`
}

// DefaultConfig returns a Config with sensible defaults. The database
// lands under ~/.obracost.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	return Config{
		DBPath:            filepath.Join(home, ".obracost", "obracost.db"),
		LogLevel:          "info",
		VarianceThreshold: 0.10,
		DefaultPeriodType: "monthly",
		Currency:          "CLP",
	}, nil
}

// Load reads configuration in precedence order: defaults, then the YAML
// file (OBRACOST_CONFIG or ~/.obracost/config.yaml), then environment
// variables.
func Load() (Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	path := os.Getenv("OBRACOST_CONFIG")
	if path == "" {
		path = filepath.Join(filepath.Dir(cfg.DBPath), "config.yaml")
	}
	if data, readErr := os.ReadFile(path); readErr == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if v := os.Getenv("OBRACOST_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("OBRACOST_LOG"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OBRACOST_VARIANCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.VarianceThreshold = f
		}
	}
	if v := os.Getenv("OBRACOST_PERIOD_TYPE"); v != "" {
		cfg.DefaultPeriodType = v
	}
	if v := os.Getenv("OBRACOST_REQUIRE_APPROVAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RequireApproval = b
		}
	}

	return cfg, nil
}
