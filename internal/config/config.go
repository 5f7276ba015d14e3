// Package config handles configuration loading for DDMCalc.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/finmodel/ddmcalc/internal/validate"
)

// Config represents the complete application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"      yaml:"api"      json:"api"`
	Defaults DefaultsConfig `mapstructure:"defaults" yaml:"defaults" json:"defaults"`
	Display  DisplayConfig  `mapstructure:"display"  yaml:"display"  json:"display"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"  json:"logging"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// DefaultsConfig holds the calculator inputs the UI form is pre-filled
// with. Rates are percentages, matching the form's domain.
type DefaultsConfig struct {
	Dividend       float64 `mapstructure:"dividend"         yaml:"dividend"         json:"dividend"`
	RequiredPct    float64 `mapstructure:"required_pct"     yaml:"required_pct"     json:"required_pct"`
	GrowthPct      float64 `mapstructure:"growth_pct"       yaml:"growth_pct"       json:"growth_pct"`
	ShortGrowthPct float64 `mapstructure:"short_growth_pct" yaml:"short_growth_pct" json:"short_growth_pct"`
	LongGrowthPct  float64 `mapstructure:"long_growth_pct"  yaml:"long_growth_pct"  json:"long_growth_pct"`
	ShortYears     int     `mapstructure:"short_years"      yaml:"short_years"      json:"short_years"`
}

// Request converts the configured defaults into a calculator request.
func (d DefaultsConfig) Request() validate.Request {
	return validate.Request{
		Dividend:       d.Dividend,
		RequiredPct:    d.RequiredPct,
		GrowthPct:      d.GrowthPct,
		ShortGrowthPct: d.ShortGrowthPct,
		LongGrowthPct:  d.LongGrowthPct,
		ShortYears:     d.ShortYears,
	}
}

// DisplayConfig holds output formatting settings.
type DisplayConfig struct {
	Currency      string `mapstructure:"currency"       yaml:"currency"       json:"currency"`       // symbol, e.g. "$"
	DecimalPlaces int    `mapstructure:"decimal_places" yaml:"decimal_places" json:"decimal_places"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.ddmcalc/config.yaml (home directory)
//  3. /etc/ddmcalc/config.yaml (system)
//
// Environment variables override config file values.
// Format: DDMCALC_<SECTION>_<KEY>, e.g., DDMCALC_API_PORT
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".ddmcalc"))
	v.AddConfigPath("/etc/ddmcalc")

	v.SetEnvPrefix("DDMCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("DDMCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values. The defaults
// section must itself pass validate.Check; the tests pin that.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Calculator form defaults
	v.SetDefault("defaults.dividend", 5.0)
	v.SetDefault("defaults.required_pct", 10.0)
	v.SetDefault("defaults.growth_pct", 5.0)
	v.SetDefault("defaults.short_growth_pct", 8.0)
	v.SetDefault("defaults.long_growth_pct", 3.0)
	v.SetDefault("defaults.short_years", 5)

	// Display defaults
	v.SetDefault("display.currency", "$")
	v.SetDefault("display.decimal_places", 2)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
