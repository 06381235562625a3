// Package config loads the simulation settings from YAML.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talgya/mini-market/internal/agents"
)

// Config is the top-level simulation configuration.
type Config struct {
	Seed     int64           `yaml:"seed"`     // 0 draws a random seed
	Turns    uint64          `yaml:"turns"`    // 0 runs until interrupted
	Interval time.Duration   `yaml:"interval"` // Pause between turns
	TaxRate  decimal.Decimal `yaml:"tax_rate"` // Wealth redistribution rate, 0 disables

	Population agents.PopulationConfig `yaml:"population"`

	TickerPath   string `yaml:"ticker_path"`   // Empty disables the ticker
	DatabasePath string `yaml:"database_path"` // Empty disables persistence

	Logging LoggingConfig `yaml:"logging"`
	API     APIConfig     `yaml:"api"`
}

// LoggingConfig controls the log level and the rotated log file.
type LoggingConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	File       string `yaml:"file"`  // Empty logs to stdout only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// APIConfig controls the read-only HTTP API.
type APIConfig struct {
	Port      int `yaml:"port"`       // 0 disables the API
	RateLimit int `yaml:"rate_limit"` // Requests per client per minute, negative = unlimited
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Turns:        100,
		TaxRate:      decimal.Zero,
		Population:   agents.DefaultPopulation(),
		TickerPath:   "ticker.csv",
		DatabasePath: "data/market.db",
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Population.People == 0 && c.Population.Farms == 0 && c.Population.Wells == 0 {
		c.Population = agents.DefaultPopulation()
	}
	if c.API.RateLimit == 0 {
		c.API.RateLimit = 120
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = 28
	}
}

// Validate checks that the configuration can drive a simulation.
func (c *Config) Validate() error {
	var errs []error
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("tax_rate must be within [0, 1], got %s", c.TaxRate))
	}
	if c.Interval < 0 {
		errs = append(errs, fmt.Errorf("interval must not be negative, got %s", c.Interval))
	}
	p := c.Population
	if p.People < 0 || p.Farms < 0 || p.Wells < 0 || p.CloningCenters < 0 {
		errs = append(errs, errors.New("population counts must not be negative"))
	}
	if p.Person.Money < 0 || p.Farm.Money < 0 || p.Well.Money < 0 || p.Cloning.Money < 0 {
		errs = append(errs, errors.New("starting money must not be negative"))
	}
	if p.Cloning.EmbryoFoodCost <= 0 && p.CloningCenters > 0 {
		errs = append(errs, errors.New("cloning.embryo_food_cost must be positive"))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.level %q", c.Logging.Level))
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port out of range: %d", c.API.Port))
	}
	if c.API.Port > 0 && c.DatabasePath == "" {
		errs = append(errs, errors.New("api requires database_path"))
	}
	return errors.Join(errs...)
}
