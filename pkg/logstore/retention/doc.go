// Package retention enforces time-based expiration on the log store.
//
// # Sweeper
//
// The Sweeper is the batch deletion executor: it translates an age
// predicate (CreatedAt < now − ExpirationInterval) into a single bulk
// delete against the store's Target surface, optionally followed by a
// count-based prune down to MaxRecords. Deletes operate on identifiers
// only; the resulting tombstones are merged into the engine's read view
// by the same write-executor task that performed the delete.
//
// A sweep is Idle → Sweeping → Idle. There is no failed terminal state:
// an I/O error abandons the cycle and the surviving records are simply
// matched again on the next trigger. Running the same sweep twice is
// idempotent.
//
// # Scheduler
//
// The Scheduler triggers sweeps: once after a startup delay (default 10
// seconds), then periodically per a cron schedule (default every hour).
// It is cancellable and restart-safe; Stop waits for an in-flight sweep.
package retention
