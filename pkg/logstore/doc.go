// Package logstore provides a persistent store for structured diagnostic
// log records with time-based expiration.
//
// # Architecture
//
// The store consists of three layers:
//
//  1. Store Engine - single-writer engine mediating all reads and writes
//  2. Storage Backend - persists records (SQLite, in-memory)
//  3. Retention - scheduled sweeps deleting expired records in bulk
//
// # Records
//
// Each record carries an opaque identifier, a UTC creation timestamp, a
// severity level, a source label, a session identifier, and the message
// body. Records are immutable once committed; deletion is the only
// mutation and is propagated to every live read view.
//
// # Write Flow
//
// Appends are recorded asynchronously so that logging never blocks or
// crashes the host application:
//
//	Append
//	     ↓
//	Write executor (serial background task queue)
//	     ↓
//	Storage backend (SQLite, WAL mode)
//	     ↓
//	Read view merge
//
// Write failures are delivered on an error channel rather than returned
// to the appending call site.
//
// # Basic Usage
//
//	store, err := engine.Open(&engine.Config{
//	    Storage:   &storage.SQLiteConfig{Path: "data/logs.db"},
//	    Retention: &retention.Config{ExpirationInterval: 7 * 24 * time.Hour},
//	})
//	if err != nil {
//	    // The handle is still usable: storage failures degrade to an
//	    // in-memory store instead of blocking application startup.
//	    slog.Warn("log store degraded", "error", err)
//	}
//	defer store.Close()
//
//	store.Append(logstore.Record{
//	    Level:   logstore.LevelInfo,
//	    Label:   "network",
//	    Session: sessionID,
//	    Text:    "request completed",
//	})
//
//	records, err := store.AllRecords(ctx)
//
// # Retention
//
// A background scheduler triggers sweeps: the first after a short startup
// delay, then periodically. A sweep deletes exactly the records older
// than the expiration interval, operating on identifiers only. Sweep
// failures are transient and retried on the next trigger.
//
// # Thread Safety
//
// All exported types are safe for concurrent use. Appends are lock-free
// with respect to concurrent sweeps: both execute on one serial write
// executor, so a record appended after a sweep was scheduled is never
// matched by that sweep.
package logstore
