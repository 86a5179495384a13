package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"logvault-hq/logvault/pkg/logstore"
	"logvault-hq/logvault/pkg/logstore/retention"
	"logvault-hq/logvault/pkg/logstore/storage"
)

// errQueueFull reports an append dropped because the write queue was full.
var errQueueFull = errors.New("write queue full")

// Config contains configuration for the store engine.
type Config struct {
	// Storage configures the SQLite backend.
	Storage *storage.SQLiteConfig

	// Retention configures expiration sweeps.
	Retention *retention.Config

	// QueueSize is the capacity of the write executor's task queue.
	// Appends beyond it are dropped and reported on Errors.
	// Default: 1024
	QueueSize int

	// ErrorBuffer is the capacity of the Errors channel.
	// Default: 64
	ErrorBuffer int

	// WriteTimeout bounds each storage commit.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// CloseTimeout bounds how long Close waits for in-flight work.
	// Default: 5 seconds
	CloseTimeout time.Duration

	// DisableScheduler skips starting the sweep scheduler. Sweeps can
	// still be triggered through Sweeper.
	DisableScheduler bool

	// Logger overrides the default component logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage:      storage.DefaultSQLiteConfig(),
		Retention:    retention.DefaultConfig(),
		QueueSize:    1024,
		ErrorBuffer:  64,
		WriteTimeout: 5 * time.Second,
		CloseTimeout: 5 * time.Second,
	}
}

// Store is the single source of truth for log record persistence. It
// mediates all reads and writes: mutations run on one serial background
// write executor, reads are served from an in-memory read view that the
// executor keeps in sync.
//
// Construct stores explicitly with Open and pass them to consumers; there
// is no package-level shared instance.
type Store struct {
	storage  logstore.Storage
	config   *Config
	view     *readView
	sweeper  *retention.Sweeper
	logger   *slog.Logger
	degraded bool

	tasks     chan func()
	errs      chan error
	done      chan struct{}
	wg        sync.WaitGroup
	closed    atomic.Bool
	closeOnce sync.Once
}

// Open initializes or attaches to the persistent location described by
// the configuration and starts the sweep scheduler.
//
// Open never fails outright: when the location cannot be opened or
// created it returns a usable handle backed by in-memory storage together
// with an error wrapping logstore.ErrStorageUnavailable, so application
// startup is never blocked by log-storage failure. Callers should log the
// returned error but may use the store either way.
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Storage == nil {
		config.Storage = storage.DefaultSQLiteConfig()
	}
	if config.Retention == nil {
		config.Retention = retention.DefaultConfig()
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 1024
	}
	if config.ErrorBuffer <= 0 {
		config.ErrorBuffer = 64
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if config.CloseTimeout <= 0 {
		config.CloseTimeout = 5 * time.Second
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default().With("component", "logstore.engine")
	}

	var openErr error
	var backend logstore.Storage

	backend, err := storage.NewSQLiteStorage(config.Storage)
	if err != nil {
		// Degrade instead of failing the host: records for this session
		// are kept in memory and lost on exit.
		logger.Error("failed to open persistent log storage, degrading to in-memory",
			"path", config.Storage.Path,
			"error", err,
		)
		backend = storage.NewMemoryStorage()
		openErr = errors.Join(logstore.ErrStorageUnavailable, err)
	}

	s := &Store{
		storage:  backend,
		config:   config,
		view:     newReadView(),
		logger:   logger,
		degraded: openErr != nil,
		tasks:    make(chan func(), config.QueueSize),
		errs:     make(chan error, config.ErrorBuffer),
		done:     make(chan struct{}),
	}

	s.wg.Add(1)
	go s.worker()

	// Warm the read view from existing records. Failure is not fatal:
	// AllRecords retries and surfaces the error to the reader.
	warmCtx, cancel := context.WithTimeout(context.Background(), config.WriteTimeout)
	if err := s.warmView(warmCtx); err != nil {
		logger.Warn("failed to warm read view", "error", err)
	}
	cancel()

	s.sweeper = retention.NewSweeper(s, config.Retention)
	if !config.DisableScheduler {
		if err := s.sweeper.Start(context.Background()); err != nil {
			logger.Error("failed to start sweep scheduler", "error", err)
		}
	}

	logger.Info("log store opened",
		"path", config.Storage.Path,
		"degraded", s.degraded,
		"expiration_interval", config.Retention.ExpirationInterval,
	)

	return s, openErr
}

// Append stores one record. The record is enqueued on the write executor
// and committed in the background; Append itself never blocks, never
// returns an error, and never panics the host. A record that cannot be
// enqueued or committed is dropped and reported on Errors.
//
// A zero ID is assigned a UUID, a zero CreatedAt the current UTC time.
func (s *Store) Append(record logstore.Record) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	} else {
		record.CreatedAt = record.CreatedAt.UTC()
	}
	if record.Level == "" {
		record.Level = logstore.LevelInfo
	}

	if s.closed.Load() {
		logstore.ObserveDrop()
		s.reportError(logstore.NewWriteError(record.ID, errors.New("store closed")))
		return
	}

	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
		defer cancel()

		if err := s.storage.Append(ctx, &record); err != nil {
			logstore.ObserveAppend("error")
			s.logger.Error("failed to store log record",
				"record_id", record.ID,
				"error", err,
			)
			s.reportError(logstore.NewWriteError(record.ID, err))
			return
		}

		logstore.ObserveAppend("ok")
		s.view.applyAppend(record)
	}

	select {
	case s.tasks <- task:
		logstore.SetQueueDepth(len(s.tasks))
	default:
		logstore.ObserveDrop()
		s.logger.Warn("write queue full, dropping record",
			"record_id", record.ID,
			"queue_capacity", s.config.QueueSize,
		)
		s.reportError(logstore.NewWriteError(record.ID, errQueueFull))
	}
}

// AllRecords returns every live record ordered by CreatedAt ascending,
// insertion order on ties. The result is a value snapshot; it reflects
// all operations the write executor has completed and never contains a
// deleted record.
//
// When the read view could not be warmed at Open, AllRecords re-attempts
// the warm-up and returns a ReadError on failure; the caller may retry.
func (s *Store) AllRecords(ctx context.Context) ([]logstore.Record, error) {
	if !s.view.loaded() {
		if err := s.warmView(ctx); err != nil {
			return nil, logstore.NewReadError(err)
		}
	}

	return s.view.snapshot(), nil
}

// Records returns the committed records matching the query filters,
// ordered like AllRecords. Unlike AllRecords it reads storage directly,
// so an enqueued-but-uncommitted append is not yet visible.
func (s *Store) Records(ctx context.Context, query *logstore.Query) ([]logstore.Record, error) {
	records, err := s.storage.Query(ctx, query)
	if err != nil {
		return nil, logstore.NewReadError(err)
	}

	return values(records), nil
}

// RemoveAll deletes every record. It is asynchronous: the call returns
// immediately and completion is observable through AllRecords returning
// an empty sequence, within one executor cycle.
func (s *Store) RemoveAll() {
	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
		defer cancel()

		if _, err := s.storage.DeleteAll(ctx); err != nil {
			// Not surfaced as a hard failure; expiration retries later.
			s.logger.Error("failed to remove all records", "error", err)
			s.reportError(logstore.NewWriteError("", err))
			return
		}

		s.view.clear()
	}

	select {
	case s.tasks <- task:
		logstore.SetQueueDepth(len(s.tasks))
	case <-s.done:
	}
}

// Errors returns the channel on which write-path failures are delivered.
// The channel is buffered; when no one drains it, further errors are
// logged and discarded rather than blocking the store.
func (s *Store) Errors() <-chan error {
	return s.errs
}

// Sweeper returns the retention sweeper, for manual sweeps and live
// configuration updates.
func (s *Store) Sweeper() *retention.Sweeper {
	return s.sweeper
}

// Degraded reports whether the store fell back to in-memory storage
// because the persistent location could not be opened.
func (s *Store) Degraded() bool {
	return s.degraded
}

// Close stops the sweep scheduler, drains the write queue bounded by
// CloseTimeout, and releases storage resources. In-flight work past the
// bound is abandoned without corrupting the store. Close is idempotent.
func (s *Store) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		s.logger.Info("closing log store")

		if s.sweeper != nil {
			s.sweeper.Stop()
		}

		s.closed.Store(true)
		close(s.done)

		drained := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(drained)
		}()

		select {
		case <-drained:
		case <-time.After(s.config.CloseTimeout):
			s.logger.Warn("close timed out draining write queue, abandoning in-flight work",
				"pending_count", len(s.tasks),
			)
		}

		closeErr = s.storage.Close()
		s.logger.Info("log store closed")
	})

	return closeErr
}

// DeleteBefore removes every record with CreatedAt strictly before cutoff
// and merges the resulting tombstones into the read view. It runs on the
// write executor: records appended after the sweep was scheduled are
// committed only after this delete completed and are never matched by it.
//
// DeleteBefore implements retention.Target.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := s.runWait(ctx, func() error {
		ids, err := s.storage.DeleteBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		s.view.applyTombstones(ids)
		deleted = int64(len(ids))
		return nil
	})
	return deleted, err
}

// DeleteOldest removes the n oldest records and merges the resulting
// tombstones into the read view.
//
// DeleteOldest implements retention.Target.
func (s *Store) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	var deleted int64
	err := s.runWait(ctx, func() error {
		ids, err := s.storage.DeleteOldest(ctx, n)
		if err != nil {
			return err
		}
		s.view.applyTombstones(ids)
		deleted = int64(len(ids))
		return nil
	})
	return deleted, err
}

// CountRecords returns the number of committed records.
//
// CountRecords implements retention.Target.
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	return s.storage.Count(ctx)
}

// RecordsBefore returns the committed records with CreatedAt strictly
// before cutoff, ordered by CreatedAt ascending.
//
// RecordsBefore implements retention.Target.
func (s *Store) RecordsBefore(ctx context.Context, cutoff time.Time) ([]logstore.Record, error) {
	records, err := s.storage.Query(ctx, &logstore.Query{End: &cutoff})
	if err != nil {
		return nil, err
	}
	return values(records), nil
}

// warmView loads the committed record set into the read view. It runs on
// the write executor, which serializes it against every mutation: the
// reload cannot miss a commit or resurrect a concurrent delete.
func (s *Store) warmView(ctx context.Context) error {
	return s.runWait(ctx, func() error {
		records, err := s.storage.All(ctx)
		if err != nil {
			return err
		}
		s.view.reload(records)
		return nil
	})
}

// runWait schedules fn on the write executor and waits for it to finish.
// The wait is bounded by ctx; an abandoned task still runs to completion
// on the executor without corrupting state.
func (s *Store) runWait(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)

	task := func() {
		result <- fn()
	}

	select {
	case s.tasks <- task:
		logstore.SetQueueDepth(len(s.tasks))
	case <-s.done:
		return errors.New("store closed")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// worker is the write executor: a single goroutine draining the task
// queue so every mutation is serialized. On shutdown it drains the
// remaining tasks before exiting.
func (s *Store) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.tasks:
			task()
			logstore.SetQueueDepth(len(s.tasks))

		case <-s.done:
			for {
				select {
				case task := <-s.tasks:
					task()
				default:
					logstore.SetQueueDepth(0)
					return
				}
			}
		}
	}
}

// reportError delivers a write-path error on the error channel without
// ever blocking the store.
func (s *Store) reportError(err error) {
	select {
	case s.errs <- err:
	default:
		s.logger.Debug("error channel full, discarding", "error", err)
	}
}

// values converts storage pointers into caller-owned value copies.
func values(records []*logstore.Record) []logstore.Record {
	out := make([]logstore.Record, 0, len(records))
	for _, record := range records {
		out = append(out, *record)
	}
	return out
}
