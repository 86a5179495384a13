package engine

import (
	"sort"
	"sync"

	"logvault-hq/logvault/pkg/logstore"
)

// readView is the read-side cache of the store: an ordered, in-memory
// snapshot of all live records. The write executor merges every committed
// append and every batch of tombstones into it immediately after the
// storage commit, so reads observe all completed operations without
// touching storage.
//
// Until the view is warmed from storage it reports loaded == false and
// ignores incremental merges; warming runs on the write executor, which
// serializes it against every mutation.
type readView struct {
	mu      sync.RWMutex
	loadedF bool

	// records is kept ordered by CreatedAt ascending, insertion order on
	// ties. Records are stored by value; snapshots copy the slice.
	records []logstore.Record
}

func newReadView() *readView {
	return &readView{}
}

// loaded reports whether the view has been warmed from storage.
func (v *readView) loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loadedF
}

// reload replaces the view content with records already ordered by the
// storage backend and marks the view loaded.
func (v *readView) reload(records []*logstore.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.records = make([]logstore.Record, 0, len(records))
	for _, record := range records {
		v.records = append(v.records, *record)
	}
	v.loadedF = true
}

// applyAppend merges one committed record into the view, inserting it
// after any records sharing its CreatedAt so ties keep insertion order.
func (v *readView) applyAppend(record logstore.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.loadedF {
		// The record is committed; it arrives with the warm-up reload.
		return
	}

	i := sort.Search(len(v.records), func(i int) bool {
		return v.records[i].CreatedAt.After(record.CreatedAt)
	})

	v.records = append(v.records, logstore.Record{})
	copy(v.records[i+1:], v.records[i:])
	v.records[i] = record
}

// applyTombstones removes the identified records from the view.
func (v *readView) applyTombstones(ids []string) {
	if len(ids) == 0 {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.loadedF {
		return
	}

	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}

	kept := v.records[:0]
	for _, record := range v.records {
		if _, ok := doomed[record.ID]; ok {
			continue
		}
		kept = append(kept, record)
	}
	v.records = kept
}

// clear removes every record from the view.
func (v *readView) clear() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.records = v.records[:0]
	v.loadedF = true
}

// snapshot returns a value copy of the current view content.
func (v *readView) snapshot() []logstore.Record {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]logstore.Record, len(v.records))
	copy(out, v.records)
	return out
}

// size returns the number of records in the view.
func (v *readView) size() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.records)
}
