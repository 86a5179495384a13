package config

import (
	"time"
)

// Config is the root configuration for the log store.
type Config struct {
	// Storage configures the persistent location.
	Storage StorageConfig `yaml:"storage"`

	// Retention configures expiration sweeps.
	Retention RetentionConfig `yaml:"retention"`

	// Engine configures the write executor.
	Engine EngineConfig `yaml:"engine"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig configures the SQLite backend.
type StorageConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// DisableWAL turns off Write-Ahead Logging mode.
	DisableWAL bool `yaml:"disable_wal"`

	// BusyTimeout is the duration to wait when the database is locked.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig configures expiration sweeps.
type RetentionConfig struct {
	// ExpirationInterval is how long records are retained.
	// Negative disables age-based sweeping.
	ExpirationInterval time.Duration `yaml:"expiration_interval"`

	// Schedule is a cron expression for periodic sweeps ("@every 1h",
	// "0 3 * * *"). Empty disables the periodic trigger.
	Schedule string `yaml:"schedule"`

	// StartupDelay is how long after open the first sweep runs.
	StartupDelay time.Duration `yaml:"startup_delay"`

	// MaxRecords caps the number of retained records. 0 means unlimited.
	MaxRecords int64 `yaml:"max_records"`

	// ArchiveBeforeDelete exports expired records as JSON before deletion.
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory archived records are written to.
	ArchivePath string `yaml:"archive_path"`
}

// EngineConfig configures the write executor.
type EngineConfig struct {
	// QueueSize is the write queue capacity.
	QueueSize int `yaml:"queue_size"`

	// ErrorBuffer is the error channel capacity.
	ErrorBuffer int `yaml:"error_buffer"`

	// WriteTimeout bounds each storage commit.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// CloseTimeout bounds how long Close waits for in-flight work.
	CloseTimeout time.Duration `yaml:"close_timeout"`
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`

	// AddSource includes file and line number in log output.
	AddSource bool `yaml:"add_source"`
}

// ApplyDefaults fills zero-valued fields with default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/logs.db"
	}
	if cfg.Storage.MaxOpenConns == 0 {
		cfg.Storage.MaxOpenConns = 4
	}
	if cfg.Storage.MaxIdleConns == 0 {
		cfg.Storage.MaxIdleConns = 2
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = 5 * time.Second
	}

	if cfg.Retention.ExpirationInterval == 0 {
		cfg.Retention.ExpirationInterval = 7 * 24 * time.Hour
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = "@every 1h"
	}
	if cfg.Retention.StartupDelay == 0 {
		cfg.Retention.StartupDelay = 10 * time.Second
	}
	if cfg.Retention.ArchivePath == "" {
		cfg.Retention.ArchivePath = "data/archives/"
	}

	if cfg.Engine.QueueSize == 0 {
		cfg.Engine.QueueSize = 1024
	}
	if cfg.Engine.ErrorBuffer == 0 {
		cfg.Engine.ErrorBuffer = 64
	}
	if cfg.Engine.WriteTimeout == 0 {
		cfg.Engine.WriteTimeout = 5 * time.Second
	}
	if cfg.Engine.CloseTimeout == 0 {
		cfg.Engine.CloseTimeout = 5 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
