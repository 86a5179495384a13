package engine

import (
	"testing"
	"time"

	"logvault-hq/logvault/pkg/logstore"
)

func loadedView(records ...*logstore.Record) *readView {
	v := newReadView()
	v.reload(records)
	return v
}

func TestReadView_UnloadedIgnoresMerges(t *testing.T) {
	v := newReadView()

	v.applyAppend(logstore.Record{ID: "early", CreatedAt: time.Now()})
	v.applyTombstones([]string{"early"})

	if v.loaded() {
		t.Error("Expected view to stay unloaded")
	}
	if v.size() != 0 {
		t.Errorf("Expected empty unloaded view, got %d records", v.size())
	}
}

func TestReadView_ReloadMarksLoaded(t *testing.T) {
	now := time.Now().UTC()
	v := loadedView(
		&logstore.Record{ID: "a", CreatedAt: now},
		&logstore.Record{ID: "b", CreatedAt: now.Add(time.Second)},
	)

	if !v.loaded() {
		t.Fatal("Expected view to be loaded after reload")
	}

	snap := v.snapshot()
	if len(snap) != 2 || snap[0].ID != "a" || snap[1].ID != "b" {
		t.Fatalf("Unexpected snapshot: %+v", snap)
	}
}

func TestReadView_ApplyAppendOrdering(t *testing.T) {
	now := time.Now().UTC()
	v := loadedView(
		&logstore.Record{ID: "a", CreatedAt: now},
		&logstore.Record{ID: "c", CreatedAt: now.Add(2 * time.Second)},
	)

	v.applyAppend(logstore.Record{ID: "b", CreatedAt: now.Add(time.Second)})

	snap := v.snapshot()
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if snap[i].ID != id {
			t.Errorf("Position %d: expected %q, got %q", i, id, snap[i].ID)
		}
	}
}

func TestReadView_ApplyAppendTieGoesLast(t *testing.T) {
	now := time.Now().UTC()
	v := loadedView(
		&logstore.Record{ID: "first", CreatedAt: now},
		&logstore.Record{ID: "second", CreatedAt: now},
	)

	// Same timestamp as the existing pair: insertion order must hold
	v.applyAppend(logstore.Record{ID: "third", CreatedAt: now})

	snap := v.snapshot()
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if snap[i].ID != id {
			t.Errorf("Position %d: expected %q, got %q", i, id, snap[i].ID)
		}
	}
}

func TestReadView_ApplyTombstones(t *testing.T) {
	now := time.Now().UTC()
	v := loadedView(
		&logstore.Record{ID: "a", CreatedAt: now},
		&logstore.Record{ID: "b", CreatedAt: now.Add(time.Second)},
		&logstore.Record{ID: "c", CreatedAt: now.Add(2 * time.Second)},
	)

	v.applyTombstones([]string{"a", "c", "never-existed"})

	snap := v.snapshot()
	if len(snap) != 1 || snap[0].ID != "b" {
		t.Fatalf("Expected only [b] to survive, got %+v", snap)
	}
}

func TestReadView_Clear(t *testing.T) {
	v := loadedView(&logstore.Record{ID: "a", CreatedAt: time.Now()})

	v.clear()

	if v.size() != 0 {
		t.Errorf("Expected empty view, got %d records", v.size())
	}
	if !v.loaded() {
		t.Error("Expected cleared view to stay loaded")
	}
}

func TestReadView_SnapshotIsACopy(t *testing.T) {
	v := loadedView(&logstore.Record{ID: "a", CreatedAt: time.Now(), Text: "original"})

	snap := v.snapshot()
	snap[0].Text = "mutated"

	again := v.snapshot()
	if again[0].Text != "original" {
		t.Errorf("Snapshot aliases internal state: %q", again[0].Text)
	}
}
