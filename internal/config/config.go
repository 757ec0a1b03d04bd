package config

import (
	"os"
	"strconv"

	"evosweep/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Database DatabaseConfig
	Server   ServerConfig
	Paths    PathConfig
}

// AnalysisConfig holds statistical analysis settings
type AnalysisConfig struct {
	Alpha       float64 // significance level for all tests
	Correction  string  // multiple-comparison correction method
	RefF1       float64 // hypervolume reference point, f1 (minimized)
	RefF2       float64 // hypervolume reference point, f2 (maximized)
	Parallelism int     // max concurrent analysis units, 0 = one per unit
}

// DatabaseConfig holds optional result-ledger connection settings
type DatabaseConfig struct {
	URL     string // empty disables persistence
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// PathConfig holds file system paths
type PathConfig struct {
	OutputDir  string // base directory with per-configuration experiment folders
	ReportFile string // xlsx report destination
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Analysis: AnalysisConfig{
			Alpha:       getEnvFloatOrDefault("ALPHA", 0.05),
			Correction:  getEnvOrDefault("CORRECTION", "bonferroni"),
			RefF1:       getEnvFloatOrDefault("HV_REF_F1", 0),
			RefF2:       getEnvFloatOrDefault("HV_REF_F2", 0),
			Parallelism: getEnvIntOrDefault("PARALLELISM", 0),
		},
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Paths: PathConfig{
			OutputDir:  getEnvOrDefault("OUTPUT_DIR", "output"),
			ReportFile: getEnvOrDefault("REPORT_FILE", "output/analysis_report.xlsx"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Analysis.Alpha <= 0 || config.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("ALPHA must be in (0, 1)")
	}
	if config.Analysis.Correction != "bonferroni" {
		return errors.ConfigInvalid("CORRECTION must be 'bonferroni'")
	}
	if config.Paths.OutputDir == "" {
		return errors.ConfigInvalid("OUTPUT_DIR is required")
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
