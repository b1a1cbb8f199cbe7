// Package config holds the engine configuration. It is carried on the
// execution context, never in package-level state.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config controls the behavior of the step engine
type Config struct {
	// Clean enables the cleanup steps, when false they become no-ops
	Clean bool `yaml:"clean"`
	// CleanupPaths are extra directories removed by the clean-extra step
	CleanupPaths []string `yaml:"cleanup_paths"`
	// Parallel is the worker count for experiment fan-out
	Parallel int `yaml:"parallel"`
	// LogLevel is the logrus level the engine logs at
	LogLevel string `yaml:"log_level"`
	// LedgerURL is the DSN of the postgres ledger, empty means in-memory
	LedgerURL string `yaml:"ledger_url"`
}

// Default returns the configuration used when nothing else was provided
func Default() *Config {
	return &Config{
		Clean:    true,
		Parallel: runtime.NumCPU(),
		LogLevel: "info",
	}
}

// Load reads a YAML configuration file on top of the defaults and applies
// the environment overrides last
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.FromEnv()
	return cfg, nil
}

// FromEnv overrides the configuration from CRUCIBLE_* environment variables
func (c *Config) FromEnv() {
	if v, ok := os.LookupEnv("CRUCIBLE_CLEAN"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Clean = b
		}
	}
	if v, ok := os.LookupEnv("CRUCIBLE_PARALLEL"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Parallel = n
		}
	}
	if v, ok := os.LookupEnv("CRUCIBLE_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("CRUCIBLE_LEDGER_URL"); ok {
		c.LedgerURL = v
	}
}
