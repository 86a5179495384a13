package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"logvault-hq/logvault/pkg/logstore"
	"logvault-hq/logvault/pkg/logstore/export"
)

// Config contains configuration for the retention sweeper.
type Config struct {
	// ExpirationInterval is how long records are retained.
	// 0 disables age-based sweeping.
	// Default: 7 days
	ExpirationInterval time.Duration

	// Schedule is a cron expression for periodic sweeps, including
	// descriptors such as "@every 1h". Empty disables the periodic
	// trigger; the startup-delay sweep still runs.
	// Default: "@every 1h"
	Schedule string

	// StartupDelay is how long after Start the first sweep runs.
	// Default: 10 seconds
	StartupDelay time.Duration

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64

	// ArchiveBeforeDelete enables archiving expired records as JSON
	// before the age-based delete. Archiving materializes the matching
	// records; leave disabled to keep sweeps identifier-only.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory to store archived records.
	ArchivePath string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		ExpirationInterval:  7 * 24 * time.Hour,
		Schedule:            "@every 1h",
		StartupDelay:        10 * time.Second,
		MaxRecords:          0,
		ArchiveBeforeDelete: false,
		ArchivePath:         "data/archives/",
	}
}

// Target is the mutation surface the sweeper operates against. The store
// engine implements it; deletes run on the engine's write executor so a
// record appended after a sweep was scheduled is never matched by it.
type Target interface {
	// DeleteBefore removes every record with CreatedAt strictly before
	// cutoff and returns the number removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the n oldest records and returns the number removed.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// CountRecords returns the current number of stored records.
	CountRecords(ctx context.Context) (int64, error)

	// RecordsBefore returns the records with CreatedAt strictly before
	// cutoff, ordered by CreatedAt ascending. Used only for archiving.
	RecordsBefore(ctx context.Context, cutoff time.Time) ([]logstore.Record, error)
}

// Sweeper enforces retention policy by deleting expired records in bulk.
//
// A sweep moves through Idle → Sweeping → Idle; both success and failure
// return to Idle. Failures are transient: the cycle is abandoned and the
// surviving records are retried on the next trigger. Overlapping triggers
// are skipped while a sweep is in flight.
type Sweeper struct {
	target    Target
	logger    *slog.Logger
	scheduler *Scheduler

	mu  sync.RWMutex
	cfg Config

	sweeping atomic.Bool
}

// NewSweeper creates a new retention sweeper.
func NewSweeper(target Target, config *Config) *Sweeper {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Sweeper{
		target: target,
		cfg:    *config,
		logger: slog.Default().With("component", "logstore.retention"),
	}
	s.scheduler = NewScheduler(s)

	return s
}

// Sweep runs one full retention cycle: age-based expiration followed by
// count-based pruning. Returns the total number of records deleted.
//
// Each phase is a single bulk delete and is atomic on its own, but the
// cycle as a whole is best-effort: a failure between phases leaves the
// remaining work for the next trigger.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		s.logger.Debug("sweep already in progress, skipping trigger")
		return 0, nil
	}
	defer s.sweeping.Store(false)

	cfg := s.snapshotConfig()

	var total int64

	if cfg.ExpirationInterval > 0 {
		cutoff := time.Now().UTC().Add(-cfg.ExpirationInterval)
		deleted, err := s.sweepBefore(ctx, cutoff, &cfg)
		if err != nil {
			logstore.ObserveSweep("error", total)
			return total, logstore.NewSweepError(cfg.ExpirationInterval.String(), err)
		}
		total += deleted
		s.logger.Info("swept expired records",
			"deleted_count", deleted,
			"cutoff_time", cutoff,
			"expiration_interval", cfg.ExpirationInterval,
		)
	}

	if cfg.MaxRecords > 0 {
		deleted, err := s.pruneByCount(ctx, &cfg)
		if err != nil {
			logstore.ObserveSweep("error", total)
			return total, logstore.NewSweepError(fmt.Sprintf("max_records=%d", cfg.MaxRecords), err)
		}
		total += deleted
		if deleted > 0 {
			s.logger.Info("pruned records over count limit",
				"deleted_count", deleted,
				"max_records", cfg.MaxRecords,
			)
		}
	}

	logstore.ObserveSweep("ok", total)

	if total == 0 {
		s.logger.Debug("sweep completed, nothing to delete")
	}

	return total, nil
}

// SweepBefore deletes every record older than the explicit cutoff,
// bypassing the configured expiration interval. Intended for callers that
// compute their own age predicate.
func (s *Sweeper) SweepBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer s.sweeping.Store(false)

	cfg := s.snapshotConfig()

	deleted, err := s.sweepBefore(ctx, cutoff.UTC(), &cfg)
	if err != nil {
		logstore.ObserveSweep("error", 0)
		return 0, logstore.NewSweepError(cfg.ExpirationInterval.String(), err)
	}

	logstore.ObserveSweep("ok", deleted)
	return deleted, nil
}

// sweepBefore archives (when configured) and deletes records older than cutoff.
func (s *Sweeper) sweepBefore(ctx context.Context, cutoff time.Time, cfg *Config) (int64, error) {
	if cfg.ArchiveBeforeDelete {
		if err := s.archive(ctx, cutoff, cfg); err != nil {
			return 0, err
		}
	}

	return s.target.DeleteBefore(ctx, cutoff)
}

// pruneByCount deletes the oldest records when the store exceeds MaxRecords.
func (s *Sweeper) pruneByCount(ctx context.Context, cfg *Config) (int64, error) {
	count, err := s.target.CountRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	if count <= cfg.MaxRecords {
		return 0, nil
	}

	return s.target.DeleteOldest(ctx, count-cfg.MaxRecords)
}

// archive exports the records about to expire to a timestamped JSON file.
func (s *Sweeper) archive(ctx context.Context, cutoff time.Time, cfg *Config) error {
	records, err := s.target.RecordsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to query records for archiving: %w", err)
	}

	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(cfg.ArchivePath, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	archiveFile := filepath.Join(cfg.ArchivePath,
		fmt.Sprintf("logs-%s.json", time.Now().UTC().Format("2006-01-02-150405")))
	f, err := os.Create(archiveFile)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	exporter := export.NewJSONExporter(true)
	if err := exporter.Export(ctx, records, f); err != nil {
		return fmt.Errorf("failed to export records to archive: %w", err)
	}

	s.logger.Info("expired records archived",
		"archive_file", archiveFile,
		"record_count", len(records),
	)

	return nil
}

// UpdateConfig applies new retention settings. The next sweep uses the
// updated values; the schedule itself is fixed at Start.
func (s *Sweeper) UpdateConfig(config Config) {
	s.mu.Lock()
	s.cfg = config
	s.mu.Unlock()

	s.logger.Info("retention configuration updated",
		"expiration_interval", config.ExpirationInterval,
		"max_records", config.MaxRecords,
	)
}

// IsSweeping reports whether a sweep is currently in flight.
func (s *Sweeper) IsSweeping() bool {
	return s.sweeping.Load()
}

// Start starts the sweep scheduler.
// Call this when opening the store.
func (s *Sweeper) Start(ctx context.Context) error {
	return s.scheduler.Start(ctx)
}

// Stop stops the sweep scheduler and waits for a running sweep to finish.
// Call this during graceful shutdown.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

// NextSweep returns the time of the next scheduled sweep.
func (s *Sweeper) NextSweep() *time.Time {
	return s.scheduler.NextRun()
}

// snapshotConfig returns a copy of the current configuration.
func (s *Sweeper) snapshotConfig() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}
