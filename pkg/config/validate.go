package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for invalid values. It is called
// after defaults are applied, so zero values that have defaults never
// reach it.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if cfg.Storage.Path == "" {
		return fmt.Errorf("storage.path cannot be empty")
	}
	if cfg.Storage.MaxOpenConns < 1 {
		return fmt.Errorf("storage.max_open_conns must be at least 1, got %d", cfg.Storage.MaxOpenConns)
	}
	if cfg.Storage.MaxIdleConns < 0 {
		return fmt.Errorf("storage.max_idle_conns cannot be negative, got %d", cfg.Storage.MaxIdleConns)
	}
	if cfg.Storage.BusyTimeout < 0 {
		return fmt.Errorf("storage.busy_timeout cannot be negative, got %v", cfg.Storage.BusyTimeout)
	}

	if cfg.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			return fmt.Errorf("retention.schedule %q is not a valid cron expression: %w", cfg.Retention.Schedule, err)
		}
	}
	if cfg.Retention.StartupDelay < 0 {
		return fmt.Errorf("retention.startup_delay cannot be negative, got %v", cfg.Retention.StartupDelay)
	}
	if cfg.Retention.MaxRecords < 0 {
		return fmt.Errorf("retention.max_records cannot be negative, got %d", cfg.Retention.MaxRecords)
	}
	if cfg.Retention.ArchiveBeforeDelete && cfg.Retention.ArchivePath == "" {
		return fmt.Errorf("retention.archive_path cannot be empty when archive_before_delete is enabled")
	}

	if cfg.Engine.QueueSize < 1 {
		return fmt.Errorf("engine.queue_size must be at least 1, got %d", cfg.Engine.QueueSize)
	}
	if cfg.Engine.ErrorBuffer < 1 {
		return fmt.Errorf("engine.error_buffer must be at least 1, got %d", cfg.Engine.ErrorBuffer)
	}
	if cfg.Engine.WriteTimeout <= 0 {
		return fmt.Errorf("engine.write_timeout must be positive, got %v", cfg.Engine.WriteTimeout)
	}
	if cfg.Engine.CloseTimeout <= 0 {
		return fmt.Errorf("engine.close_timeout must be positive, got %v", cfg.Engine.CloseTimeout)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text; got %q", cfg.Logging.Format)
	}

	return nil
}
