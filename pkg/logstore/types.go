package logstore

import (
	"context"
	"time"
)

// Level is the severity tag attached to a record.
type Level string

const (
	LevelDebug    Level = "debug"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

// Valid reports whether l is one of the known severity levels.
func (l Level) Valid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical:
		return true
	}
	return false
}

// Record is a single diagnostic log entry. Records are immutable once
// committed: deletion is the only mutation the store performs.
type Record struct {
	// ID is an opaque stable identifier, assigned at append time.
	ID string `json:"id"`

	// CreatedAt is the UTC timestamp assigned at append time. It is the
	// expiration and ordering key. Wall-clock timestamps may arrive out of
	// order under concurrent writers; reads are always returned sorted by
	// CreatedAt ascending with ties broken by insertion order.
	CreatedAt time.Time `json:"created_at"`

	// Level is the enumerated severity tag.
	Level Level `json:"level"`

	// Label is a free-text source label (subsystem name).
	Label string `json:"label"`

	// Session groups records produced by one logging session.
	Session string `json:"session"`

	// Text is the message body. The store never interprets it.
	Text string `json:"text"`
}

// Query defines declarative filter parameters for reading records.
// Zero-valued fields are ignored.
type Query struct {
	// Time range on CreatedAt. Start is inclusive, End is exclusive.
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`

	// Filters
	Level   Level  `json:"level,omitempty"`
	Label   string `json:"label,omitempty"`
	Session string `json:"session,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Storage defines the interface for record persistence backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Append persists one record. The record is never updated afterwards.
	Append(ctx context.Context, record *Record) error

	// All returns every stored record ordered by CreatedAt ascending,
	// ties broken by insertion order. Returns an empty slice when the
	// store is empty.
	All(ctx context.Context) ([]*Record, error)

	// Query returns the records matching the query filters, ordered like All.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes every record with CreatedAt strictly before
	// cutoff and returns the identifiers of the removed records. Record
	// bodies are never materialized.
	DeleteBefore(ctx context.Context, cutoff time.Time) ([]string, error)

	// DeleteOldest removes the n oldest records (CreatedAt ascending,
	// insertion order on ties) and returns their identifiers.
	DeleteOldest(ctx context.Context, n int64) ([]string, error)

	// DeleteAll removes every record and returns the number removed.
	DeleteAll(ctx context.Context) (int64, error)

	// Close releases any resources held by the backend.
	// The backend must not be used after calling Close.
	Close() error
}
