package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"logvault-hq/logvault/pkg/logstore"
)

// MemoryStorage implements the logstore.Storage interface using an
// in-memory slice. It backs the degraded mode the engine falls into when
// the persistent location cannot be opened, and is also used in tests.
// All data is lost when the process exits.
//
// MemoryStorage is thread-safe and supports concurrent access using sync.RWMutex.
type MemoryStorage struct {
	// records holds the records in insertion order.
	records []*logstore.Record

	// mu protects access to records.
	mu sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Append persists one record to memory.
func (m *MemoryStorage) Append(ctx context.Context, record *logstore.Record) error {
	if record == nil {
		return logstore.NewStorageError("memory", "append", fmt.Errorf("record cannot be nil"))
	}
	if record.ID == "" {
		return logstore.NewStorageError("memory", "append", fmt.Errorf("record id cannot be empty"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Copy to keep the stored record immutable
	recordCopy := *record
	recordCopy.CreatedAt = recordCopy.CreatedAt.UTC()
	m.records = append(m.records, &recordCopy)

	return nil
}

// All returns every record ordered by CreatedAt ascending, insertion
// order on ties.
func (m *MemoryStorage) All(ctx context.Context) ([]*logstore.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return copySorted(m.records), nil
}

// Query returns the records matching the query filters.
func (m *MemoryStorage) Query(ctx context.Context, query *logstore.Query) ([]*logstore.Record, error) {
	if query == nil {
		query = &logstore.Query{}
	}

	m.mu.RLock()
	var matched []*logstore.Record
	for _, record := range m.records {
		if matchesQuery(record, query) {
			matched = append(matched, record)
		}
	}
	m.mu.RUnlock()

	results := copySorted(matched)

	// Apply pagination after ordering
	start := query.Offset
	if start > len(results) {
		return []*logstore.Record{}, nil
	}
	results = results[start:]
	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}

	return results, nil
}

// Count returns the number of stored records.
func (m *MemoryStorage) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// DeleteBefore removes every record with CreatedAt strictly before cutoff
// and returns the identifiers of the removed records.
func (m *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	cutoff = cutoff.UTC()

	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	kept := m.records[:0]
	for _, record := range m.records {
		if record.CreatedAt.Before(cutoff) {
			ids = append(ids, record.ID)
			continue
		}
		kept = append(kept, record)
	}
	m.records = kept

	return ids, nil
}

// DeleteOldest removes the n oldest records and returns their identifiers.
func (m *MemoryStorage) DeleteOldest(ctx context.Context, n int64) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := copySorted(m.records)
	if n > int64(len(ordered)) {
		n = int64(len(ordered))
	}

	doomed := make(map[string]struct{}, n)
	ids := make([]string, 0, n)
	for _, record := range ordered[:n] {
		doomed[record.ID] = struct{}{}
		ids = append(ids, record.ID)
	}

	kept := m.records[:0]
	for _, record := range m.records {
		if _, ok := doomed[record.ID]; ok {
			continue
		}
		kept = append(kept, record)
	}
	m.records = kept

	return ids, nil
}

// DeleteAll removes every record and returns the number removed.
func (m *MemoryStorage) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := int64(len(m.records))
	m.records = nil
	return count, nil
}

// Close releases any resources held by the backend.
func (m *MemoryStorage) Close() error {
	return nil
}

// matchesQuery reports whether the record satisfies the query filters.
func matchesQuery(record *logstore.Record, query *logstore.Query) bool {
	if query.Start != nil && record.CreatedAt.Before(query.Start.UTC()) {
		return false
	}
	if query.End != nil && !record.CreatedAt.Before(query.End.UTC()) {
		return false
	}
	if query.Level != "" && record.Level != query.Level {
		return false
	}
	if query.Label != "" && record.Label != query.Label {
		return false
	}
	if query.Session != "" && record.Session != query.Session {
		return false
	}
	return true
}

// copySorted returns value copies of the records sorted by CreatedAt
// ascending. The stable sort preserves insertion order on ties.
func copySorted(records []*logstore.Record) []*logstore.Record {
	results := make([]*logstore.Record, 0, len(records))
	for _, record := range records {
		recordCopy := *record
		results = append(results, &recordCopy)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})

	return results
}
