package config

import (
	"os"
	"strconv"

	"reflectbench/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional run-ledger connection. An empty URL
// disables persistence; analyses still run in memory.
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// AnalysisConfig holds the statistical configuration surface
type AnalysisConfig struct {
	Alpha       float64 // significance threshold, applied uniformly
	MaxParallel int64   // concurrent per-metric analyses
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL:     dbURL,
			Enabled: dbURL != "",
		},
		Analysis: AnalysisConfig{
			Alpha:       getEnvFloatOrDefault("ALPHA", 0.05),
			MaxParallel: int64(getEnvIntOrDefault("MAX_PARALLEL", 4)),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Analysis.Alpha <= 0 || cfg.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("ALPHA must be in (0, 1)")
	}
	if cfg.Analysis.MaxParallel < 1 {
		return errors.ConfigInvalid("MAX_PARALLEL must be >= 1")
	}
	if cfg.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
