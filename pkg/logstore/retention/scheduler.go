package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers retention sweeps in the background. The first sweep
// runs once after a fixed startup delay; subsequent sweeps follow the
// configured cron schedule, so long-lived processes get continuous
// expiration without re-opening the store.
type Scheduler struct {
	sweeper *Sweeper
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a new sweep scheduler.
func NewScheduler(sweeper *Sweeper) *Scheduler {
	return &Scheduler{
		sweeper: sweeper,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "logstore.scheduler"),
	}
}

// Start begins scheduled sweeping. The startup delay and schedule are
// read from the sweeper's configuration.
//
// Common schedule expressions:
//   - "@every 1h"   - Every hour
//   - "0 3 * * *"   - Daily at 3 AM
//   - "0 */6 * * *" - Every 6 hours
//
// If Schedule is empty, only the startup-delay sweep runs.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	cfg := s.sweeper.snapshotConfig()

	if cfg.Schedule != "" {
		// Validate cron expression
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", cfg.Schedule, err)
		}

		if _, err := s.cron.AddFunc(cfg.Schedule, func() {
			s.runSweep(ctx)
		}); err != nil {
			return fmt.Errorf("failed to schedule sweep: %w", err)
		}
	}

	s.stopCh = make(chan struct{})
	s.running = true

	// First sweep after the startup delay
	go s.startupSweep(ctx, cfg.StartupDelay)

	if cfg.Schedule != "" {
		s.cron.Start()
	}

	s.logger.Info("sweep scheduler started",
		"startup_delay", cfg.StartupDelay,
		"schedule", cfg.Schedule,
		"expiration_interval", cfg.ExpirationInterval,
	)

	// Stop with the owning context
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.stopCh:
		}
	}()

	return nil
}

// startupSweep waits out the startup delay, then runs the first sweep.
func (s *Scheduler) startupSweep(ctx context.Context, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		s.runSweep(ctx)
	case <-s.stopCh:
	case <-ctx.Done():
	}
}

// runSweep executes one sweep cycle.
func (s *Scheduler) runSweep(ctx context.Context) {
	s.logger.Debug("starting scheduled sweep")

	deleted, err := s.sweeper.Sweep(ctx)
	if err != nil {
		// Transient: surviving records are retried on the next trigger
		s.logger.Error("scheduled sweep failed", "error", err)
		return
	}

	if deleted > 0 {
		s.logger.Info("scheduled sweep completed", "deleted_count", deleted)
	} else {
		s.logger.Debug("scheduled sweep completed, no records deleted")
	}
}

// Stop stops the scheduler and waits for any running sweep to complete.
// Stop is safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopCh)
	stopCtx := s.cron.Stop()
	<-stopCtx.Done() // Wait for running jobs to finish
	s.running = false

	s.logger.Info("sweep scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sweep time, nil when no periodic
// schedule is configured.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
