package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	UserAgent             string   `json:"user_agent"`
	OutputDir             string   `json:"output_dir"`
	HTTPTimeoutSeconds    int      `json:"http_timeout_seconds"`
	MaxConcurrentRequests int      `json:"max_concurrent_requests"`
	MaxDepth              int      `json:"max_depth"`
	MaxEntriesPerDir      int      `json:"max_entries_per_dir"`
	MaxTotalFiles         int      `json:"max_total_files"`
	PreserveModTime       bool     `json:"preserve_mod_time"`
	Filters               []string `json:"filters"`
	LogLevel              string   `json:"log_level"`
	LogFile               string   `json:"log_file"`
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	return &Config{
		UserAgent:             "Mozilla/5.0 (compatible; httpls/1.0)",
		OutputDir:             "./mirror",
		HTTPTimeoutSeconds:    30,
		MaxConcurrentRequests: 4,
		MaxDepth:              1,
		MaxEntriesPerDir:      0,
		MaxTotalFiles:         0,
		PreserveModTime:       true,
		LogLevel:              "INFO",
	}
}

// LoadConfig loads the application configuration from an optional JSON file,
// then applies HTTPLS_* environment overrides (including a .env file if present).
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env is optional; ignore a missing file but not a broken one
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv overrides config fields from HTTPLS_* environment variables
func applyEnv(cfg *Config) {
	if v := os.Getenv("HTTPLS_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("HTTPLS_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("HTTPLS_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTPTimeoutSeconds = n
		}
	}
	if v := os.Getenv("HTTPLS_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConcurrentRequests = n
		}
	}
	if v := os.Getenv("HTTPLS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HTTPLS_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

// validateConfig ensures that required fields are present and sane
func validateConfig(cfg *Config) error {
	if cfg.UserAgent == "" {
		return fmt.Errorf("user_agent must not be empty")
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 30
	}
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = 4
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 1
	}
	return nil
}
