package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the operator configuration. An empty path yields the defaults.
// Environment variables override file values:
//   - CITUS_IMAGE
//   - CITUS_PASSWORD
//   - CITUS_RESYNC_INTERVAL (e.g. 10s)
//   - CITUS_ERROR_REQUEUE_AFTER (e.g. 5s)
//   - CITUS_MAX_CONCURRENT_RECONCILES
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		cfg, err = parseConfig(data)
		if err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFromBytes parses, defaults and validates a configuration from bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// parseConfig parses YAML data into a Config struct.
func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CITUS_IMAGE"); v != "" {
		cfg.Image = v
	}
	if v := os.Getenv("CITUS_PASSWORD"); v != "" {
		cfg.Password = v
	}
	cfg.ResyncInterval = parseDuration("CITUS_RESYNC_INTERVAL", cfg.ResyncInterval)
	cfg.ErrorRequeueAfter = parseDuration("CITUS_ERROR_REQUEUE_AFTER", cfg.ErrorRequeueAfter)
	cfg.MaxConcurrentReconciles = parseInt("CITUS_MAX_CONCURRENT_RECONCILES", cfg.MaxConcurrentReconciles)
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the current value is kept.
func parseDuration(envVar string, current time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return current
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return current
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the current value is kept.
func parseInt(envVar string, current int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return current
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return current
	}

	return i
}
