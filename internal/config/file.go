package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFilePath returns the path the running configuration is persisted
// to: the first existing file on the search path, or the home-directory
// location when none exists yet.
func ConfigFilePath() string {
	candidates := []string{
		"./config/config.yaml",
		filepath.Join(homeDir(), ".ddmcalc", "config.yaml"),
		"/etc/ddmcalc/config.yaml",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return candidates[1]
}

// SaveToFile writes the configuration to the given path as YAML, creating
// the parent directory if needed.
func SaveToFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.Set("api.host", cfg.API.Host)
	v.Set("api.port", cfg.API.Port)
	v.Set("api.cors_origins", cfg.API.CORSOrigins)
	v.Set("defaults.dividend", cfg.Defaults.Dividend)
	v.Set("defaults.required_pct", cfg.Defaults.RequiredPct)
	v.Set("defaults.growth_pct", cfg.Defaults.GrowthPct)
	v.Set("defaults.short_growth_pct", cfg.Defaults.ShortGrowthPct)
	v.Set("defaults.long_growth_pct", cfg.Defaults.LongGrowthPct)
	v.Set("defaults.short_years", cfg.Defaults.ShortYears)
	v.Set("display.currency", cfg.Display.Currency)
	v.Set("display.decimal_places", cfg.Display.DecimalPlaces)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}
