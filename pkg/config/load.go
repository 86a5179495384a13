package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Duration fields in the file are integer nanoseconds; prefer the
// environment overrides for human-readable durations.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention LOGVAULT_SECTION_FIELD (e.g.
// LOGVAULT_STORAGE_PATH) and always take precedence over file values.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// Default returns the default configuration without reading any file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Duration variables accept time.ParseDuration syntax.
func applyEnvOverrides(cfg *Config) {
	// Storage overrides
	if val := os.Getenv("LOGVAULT_STORAGE_PATH"); val != "" {
		cfg.Storage.Path = val
	}
	if val := os.Getenv("LOGVAULT_STORAGE_MAX_OPEN_CONNS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Storage.MaxOpenConns = n
		}
	}
	if val := os.Getenv("LOGVAULT_STORAGE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Storage.BusyTimeout = d
		}
	}

	// Retention overrides
	if val := os.Getenv("LOGVAULT_RETENTION_EXPIRATION_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retention.ExpirationInterval = d
		}
	}
	if val := os.Getenv("LOGVAULT_RETENTION_SCHEDULE"); val != "" {
		cfg.Retention.Schedule = val
	}
	if val := os.Getenv("LOGVAULT_RETENTION_STARTUP_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retention.StartupDelay = d
		}
	}
	if val := os.Getenv("LOGVAULT_RETENTION_MAX_RECORDS"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Retention.MaxRecords = n
		}
	}

	// Engine overrides
	if val := os.Getenv("LOGVAULT_ENGINE_QUEUE_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Engine.QueueSize = n
		}
	}
	if val := os.Getenv("LOGVAULT_ENGINE_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.WriteTimeout = d
		}
	}

	// Logging overrides
	if val := os.Getenv("LOGVAULT_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("LOGVAULT_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
