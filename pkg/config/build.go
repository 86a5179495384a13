package config

import (
	"logvault-hq/logvault/pkg/logstore/engine"
	"logvault-hq/logvault/pkg/logstore/retention"
	"logvault-hq/logvault/pkg/logstore/storage"
)

// EngineConfig translates the loaded configuration into an engine
// configuration ready for engine.Open.
//
// A negative retention.expiration_interval disables age-based sweeping;
// a file value of 0 means "use the default" and has already been
// replaced by ApplyDefaults.
func (c *Config) EngineConfig() *engine.Config {
	interval := c.Retention.ExpirationInterval
	if interval < 0 {
		interval = 0
	}

	return &engine.Config{
		Storage: &storage.SQLiteConfig{
			Path:         c.Storage.Path,
			MaxOpenConns: c.Storage.MaxOpenConns,
			MaxIdleConns: c.Storage.MaxIdleConns,
			WALMode:      !c.Storage.DisableWAL,
			BusyTimeout:  c.Storage.BusyTimeout,
		},
		Retention: &retention.Config{
			ExpirationInterval:  interval,
			Schedule:            c.Retention.Schedule,
			StartupDelay:        c.Retention.StartupDelay,
			MaxRecords:          c.Retention.MaxRecords,
			ArchiveBeforeDelete: c.Retention.ArchiveBeforeDelete,
			ArchivePath:         c.Retention.ArchivePath,
		},
		QueueSize:    c.Engine.QueueSize,
		ErrorBuffer:  c.Engine.ErrorBuffer,
		WriteTimeout: c.Engine.WriteTimeout,
		CloseTimeout: c.Engine.CloseTimeout,
	}
}
