// Package config provides configuration management for the strike
// selection engine. It replaces environment-variable lookups with an
// explicit value passed into the analysis context.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Engine tuning defaults
const (
	// defaultADXMinLive is the ADX gate threshold in live mode
	defaultADXMinLive = 20.0
	// defaultADXMinPaper is the relaxed ADX gate threshold outside live mode
	defaultADXMinPaper = 15.0
	// defaultIVRankMax is the upper bound of the acceptable IV rank band
	defaultIVRankMax = 0.80
	// defaultStrikeStep is used when the chain has too few strikes to infer one
	defaultStrikeStep = 50.0
	// defaultLateEntryCutoff is the expiry-day time past which new entries are refused
	defaultLateEntryCutoff = "14:30"
	// defaultTimezone is the exchange timezone used for time-of-day rules
	defaultTimezone = "Asia/Kolkata"
)

// Config represents the complete application configuration.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Engine      EngineConfig      `yaml:"engine"`
	Data        DataConfig        `yaml:"data"`
}

// EnvironmentConfig defines the environment settings.
type EnvironmentConfig struct {
	Mode     string `yaml:"mode"`      // paper | live
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// EngineConfig defines the tunable gate thresholds and grid defaults of
// the strike-selection engine.
type EngineConfig struct {
	ADXMin            float64 `yaml:"adx_min"`
	IVRankMax         float64 `yaml:"iv_rank_max"`
	LateEntryCutoff   string  `yaml:"late_entry_cutoff"` // "HH:MM" exchange time
	DefaultStrikeStep float64 `yaml:"default_strike_step"`
	Timezone          string  `yaml:"timezone"`
}

// DataConfig defines where the offline runner reads recorded market
// data and, optionally, where it journals analysis outcomes.
type DataConfig struct {
	ChainPath   string `yaml:"chain_path"`
	CandlesPath string `yaml:"candles_path"`
	JournalPath string `yaml:"journal_path"`
}

// DefaultEngine returns the engine configuration used when no config
// file is loaded, e.g. by library callers and tests. mode follows the
// environment mode semantics ("live" tightens the ADX gate).
func DefaultEngine(mode string) EngineConfig {
	e := EngineConfig{
		IVRankMax:         defaultIVRankMax,
		LateEntryCutoff:   defaultLateEntryCutoff,
		DefaultStrikeStep: defaultStrikeStep,
		Timezone:          defaultTimezone,
	}
	if mode == "live" {
		e.ADXMin = defaultADXMinLive
	} else {
		e.ADXMin = defaultADXMinPaper
	}
	return e
}

// Load reads and parses the configuration file from the specified path.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a user-provided config file path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var config Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks all configuration values and fills engine defaults.
func (c *Config) Validate() error {
	if c.Environment.Mode != "paper" && c.Environment.Mode != "live" {
		return fmt.Errorf("environment.mode must be 'paper' or 'live'")
	}

	c.normalizeEngine()

	if c.Engine.ADXMin < 0 {
		return fmt.Errorf("engine.adx_min must be >= 0")
	}
	if c.Engine.IVRankMax <= 0 || c.Engine.IVRankMax > 1.0 {
		return fmt.Errorf("engine.iv_rank_max must be in (0, 1.0]")
	}
	if c.Engine.DefaultStrikeStep <= 0 {
		return fmt.Errorf("engine.default_strike_step must be > 0")
	}
	if _, err := time.Parse("15:04", c.Engine.LateEntryCutoff); err != nil {
		return fmt.Errorf("engine.late_entry_cutoff invalid: %w", err)
	}

	return nil
}

// IsPaperTrading returns true if the engine runs in paper mode.
func (c *Config) IsPaperTrading() bool {
	return c.Environment.Mode == "paper"
}

// normalizeEngine fills unset engine values with mode-aware defaults.
func (c *Config) normalizeEngine() {
	defaults := DefaultEngine(c.Environment.Mode)
	if c.Engine.ADXMin == 0 {
		c.Engine.ADXMin = defaults.ADXMin
	}
	if c.Engine.IVRankMax == 0 {
		c.Engine.IVRankMax = defaults.IVRankMax
	}
	if c.Engine.LateEntryCutoff == "" {
		c.Engine.LateEntryCutoff = defaults.LateEntryCutoff
	}
	if c.Engine.DefaultStrikeStep == 0 {
		c.Engine.DefaultStrikeStep = defaults.DefaultStrikeStep
	}
	if c.Engine.Timezone == "" {
		c.Engine.Timezone = defaults.Timezone
	}
}

// CutoffHours returns the late-entry cutoff as fractional hours, e.g.
// "14:30" becomes 14.5. Falls back to the default cutoff on a value
// that no longer parses.
func (e EngineConfig) CutoffHours() float64 {
	t, err := time.Parse("15:04", e.LateEntryCutoff)
	if err != nil {
		t, _ = time.Parse("15:04", defaultLateEntryCutoff)
	}
	return float64(t.Hour()) + float64(t.Minute())/60.0
}

// Location returns the exchange timezone, falling back to a fixed IST
// zone for minimal containers without tzdata.
func (e EngineConfig) Location() *time.Location {
	tz := e.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}
