// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the build configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or are
// provided via CLI flags, which take priority over file values.
type Config struct {
	// Paths
	Excel string `json:"excel,omitempty"` // Path to the source spreadsheet
	Cache string `json:"cache,omitempty"` // Path to the geocode cache file
	Out   string `json:"out,omitempty"`   // Path to the output events JSON

	// Geocoding
	UserAgent   string `json:"user_agent,omitempty"`                        // User-Agent sent to Nominatim (identify yourself per usage policy)
	BaseURL     string `json:"base_url,omitempty" validate:"omitempty,url"` // Nominatim endpoint override
	CountryBias string `json:"country_bias,omitempty"`                      // Appended to the first lookup attempt for each location
	DelayMS     int    `json:"delay_ms,omitempty" validate:"min=0"`         // Minimum spacing between external lookups
	TimeoutSec  int    `json:"timeout_sec,omitempty" validate:"min=0"`      // Per-request HTTP timeout

	// Behavior
	Verbose      bool `json:"verbose,omitempty"`       // Print detailed build information
	SkipValidate bool `json:"skip_validate,omitempty"` // Skip schema validation of the written output
}

// Defaults returns the built-in configuration, matching the paths and
// pacing the original deployment used.
func Defaults() Config {
	return Config{
		Excel:       "events.xlsx",
		Cache:       ".geocode_cache.json",
		Out:         filepath.Join("docs", "data", "events.json"),
		CountryBias: "United Kingdom",
		DelayMS:     1100,
		TimeoutSec:  30,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks field constraints via struct tags, then the cross-field
// and filesystem rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: field %q fails %q constraint", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Excel != "" {
		if _, err := os.Stat(c.Excel); os.IsNotExist(err) {
			return fmt.Errorf("config error: spreadsheet not found: %s", c.Excel)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. CLI flag overrides are applied by the caller before this
// step, so the priority order is flags > config file > defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Excel == "" {
		result.Excel = defaults.Excel
	}
	if result.Cache == "" {
		result.Cache = defaults.Cache
	}
	if result.Out == "" {
		result.Out = defaults.Out
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.CountryBias == "" {
		result.CountryBias = defaults.CountryBias
	}
	if result.DelayMS == 0 {
		result.DelayMS = defaults.DelayMS
	}
	if result.TimeoutSec == 0 {
		result.TimeoutSec = defaults.TimeoutSec
	}

	return result
}

// Delay returns the configured lookup spacing as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// Timeout returns the configured HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}
