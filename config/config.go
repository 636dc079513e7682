package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents a complete allocation run configuration
type Config struct {
	Portfolio PortfolioConfig `json:"portfolio" yaml:"portfolio"`
	Input     InputConfig     `json:"input" yaml:"input"`
	Risk      RiskConfig      `json:"risk" yaml:"risk"`
	Runner    RunnerConfig    `json:"runner" yaml:"runner"`
	Review    ReviewConfig    `json:"review" yaml:"review"`
	Output    OutputConfig    `json:"output" yaml:"output"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// PortfolioConfig holds the capital to distribute. A zero worth means
// "ask on the terminal or take it from --worth".
type PortfolioConfig struct {
	Worth    float64 `json:"worth" yaml:"worth"`
	Currency string  `json:"currency" yaml:"currency"`
}

// InputConfig points at the price data: an .xlsx workbook, a CSV file or a
// directory of CSV files.
type InputConfig struct {
	Path string `json:"path" yaml:"path"`
}

// RiskConfig contains the VaR estimator parameters
type RiskConfig struct {
	Confidence  float64 `json:"confidence" yaml:"confidence"`
	Simulations int     `json:"simulations" yaml:"simulations"`
	HorizonDays int     `json:"horizon_days" yaml:"horizon_days"`
	Seed        uint64  `json:"seed" yaml:"seed"` // 0 = random
	Workers     int     `json:"workers" yaml:"workers"`
}

// RunnerConfig controls the per-asset pipeline
type RunnerConfig struct {
	OnError string `json:"on_error" yaml:"on_error"` // "abort" or "skip"
	Workers int    `json:"workers" yaml:"workers"`   // assets evaluated concurrently
}

// ReviewConfig contains the advisory allocation limits
type ReviewConfig struct {
	MaxWeight       float64 `json:"max_weight" yaml:"max_weight"`
	FailOnViolation bool    `json:"fail_on_violation" yaml:"fail_on_violation"`
}

// OutputConfig lists the optional artifacts of a run
type OutputConfig struct {
	XLSXFile    string `json:"xlsx_file,omitempty" yaml:"xlsx_file,omitempty"`
	ChartFile   string `json:"chart_file,omitempty" yaml:"chart_file,omitempty"`
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type    string `json:"type" yaml:"type"` // "sqlite", "postgres", "csv" or "none"
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DSN     string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	CSVFile string `json:"csv_file,omitempty" yaml:"csv_file,omitempty"`
}

// LogConfig selects the logger level and encoding
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "console" or "json"
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Unset sections keep their defaults.
	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Portfolio.Worth < 0 || math.IsNaN(c.Portfolio.Worth) || math.IsInf(c.Portfolio.Worth, 0) {
		return fmt.Errorf("portfolio.worth must be a positive number (or 0 to prompt)")
	}
	if c.Portfolio.Currency == "" {
		return fmt.Errorf("portfolio.currency is required")
	}
	if c.Risk.Confidence <= 0 || c.Risk.Confidence >= 1 {
		return fmt.Errorf("risk.confidence must be between 0 and 1")
	}
	if c.Risk.Simulations <= 0 {
		return fmt.Errorf("risk.simulations must be positive")
	}
	if c.Risk.HorizonDays <= 0 {
		return fmt.Errorf("risk.horizon_days must be positive")
	}
	if c.Risk.Workers < 0 || c.Runner.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.Runner.OnError != "abort" && c.Runner.OnError != "skip" {
		return fmt.Errorf("runner.on_error must be 'abort' or 'skip'")
	}
	if c.Review.MaxWeight < 0 || c.Review.MaxWeight > 1 {
		return fmt.Errorf("review.max_weight must be between 0 and 1")
	}
	switch c.Journal.Type {
	case "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	case "postgres":
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal dsn required for postgres type")
		}
	case "csv":
		if c.Journal.CSVFile == "" {
			return fmt.Errorf("journal csv_file required for csv type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'postgres', 'csv' or 'none'")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'console' or 'json'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Portfolio: PortfolioConfig{
			Currency: "USD",
		},
		Risk: RiskConfig{
			Confidence:  0.95,
			Simulations: 10_000,
			HorizonDays: 252,
			Workers:     runtime.GOMAXPROCS(0),
		},
		Runner: RunnerConfig{
			OnError: "abort",
			Workers: 4,
		},
		Output: OutputConfig{
			XLSXFile: "portfolio_allocation.xlsx",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./riskparity.sqlite",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
