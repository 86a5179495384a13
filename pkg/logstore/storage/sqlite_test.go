package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"logvault-hq/logvault/pkg/logstore"
)

// createTempDB creates a temporary SQLite database for testing.
func createTempDB(t *testing.T) (*SQLiteStorage, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	config := &SQLiteConfig{
		Path:         dbPath,
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}

	s, err := NewSQLiteStorage(config)
	if err != nil {
		t.Fatalf("Failed to create SQLite storage: %v", err)
	}

	return s, dbPath
}

// appendRecord appends a record with the given id and creation time.
func appendRecord(t *testing.T, s logstore.Storage, id string, createdAt time.Time) {
	t.Helper()

	err := s.Append(context.Background(), &logstore.Record{
		ID:        id,
		CreatedAt: createdAt,
		Level:     logstore.LevelInfo,
		Label:     "test",
		Session:   "session-1",
		Text:      "message " + id,
	})
	if err != nil {
		t.Fatalf("Append(%s) failed: %v", id, err)
	}
}

func TestSQLiteStorage_Initialize(t *testing.T) {
	s, dbPath := createTempDB(t)
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSQLiteStorage_InitializeEmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage(&SQLiteConfig{})
	if err == nil {
		t.Fatal("Expected error for empty path")
	}
}

func TestSQLiteStorage_AppendAndAll(t *testing.T) {
	s, _ := createTempDB(t)
	defer s.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	record := &logstore.Record{
		ID:        "rec-1",
		CreatedAt: now,
		Level:     logstore.LevelWarning,
		Label:     "network",
		Session:   "session-1",
		Text:      "request failed",
	}
	if err := s.Append(ctx, record); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.ID != "rec-1" {
		t.Errorf("Expected ID 'rec-1', got %q", got.ID)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("Expected CreatedAt %v, got %v", now, got.CreatedAt)
	}
	if got.Level != logstore.LevelWarning {
		t.Errorf("Expected level warning, got %q", got.Level)
	}
	if got.Label != "network" || got.Session != "session-1" || got.Text != "request failed" {
		t.Errorf("Record fields not preserved: %+v", got)
	}
}

func TestSQLiteStorage_AllOrdering(t *testing.T) {
	s, _ := createTempDB(t)
	defer s.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	// Out-of-order timestamps; b and c share one timestamp so insertion
	// order must break the tie.
	appendRecord(t, s, "a", now.Add(2*time.Hour))
	appendRecord(t, s, "b", now)
	appendRecord(t, s, "c", now)
	appendRecord(t, s, "d", now.Add(-time.Hour))

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}

	want := []string{"d", "b", "c", "a"}
	if len(records) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(records))
	}
	for i, id := range want {
		if records[i].ID != id {
			t.Errorf("Position %d: expected %q, got %q", i, id, records[i].ID)
		}
	}
}

func TestSQLiteStorage_QueryFilters(t *testing.T) {
	s, _ := createTempDB(t)
	defer s.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	records := []*logstore.Record{
		{ID: "1", CreatedAt: now.Add(-2 * time.Hour), Level: logstore.LevelInfo, Session: "s1", Label: "net"},
		{ID: "2", CreatedAt: now.Add(-time.Hour), Level: logstore.LevelError, Session: "s1", Label: "db"},
		{ID: "3", CreatedAt: now, Level: logstore.LevelError, Session: "s2", Label: "net"},
	}
	for _, r := range records {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("Append(%s) failed: %v", r.ID, err)
		}
	}

	tests := []struct {
		name  string
		query *logstore.Query
		want  []string
	}{
		{"all", &logstore.Query{}, []string{"1", "2", "3"}},
		{"by session", &logstore.Query{Session: "s1"}, []string{"1", "2"}},
		{"by level", &logstore.Query{Level: logstore.LevelError}, []string{"2", "3"}},
		{"by label", &logstore.Query{Label: "net"}, []string{"1", "3"}},
		{"end exclusive", &logstore.Query{End: &now}, []string{"1", "2"}},
		{"start inclusive", &logstore.Query{Start: &now}, []string{"3"}},
		{"limit", &logstore.Query{Limit: 2}, []string{"1", "2"}},
		{"offset", &logstore.Query{Offset: 1}, []string{"2", "3"}},
		{"limit and offset", &logstore.Query{Limit: 1, Offset: 1}, []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(ctx, tt.query)
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d records, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Position %d: expected %q, got %q", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestSQLiteStorage_DeleteBefore(t *testing.T) {
	s, _ := createTempDB(t)
	defer s.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	appendRecord(t, s, "old", now.Add(-time.Hour))
	appendRecord(t, s, "cutoff", now)
	appendRecord(t, s, "new", now.Add(time.Hour))

	// Strictly before: the record at the cutoff survives
	ids, err := s.DeleteBefore(ctx, now)
	if err != nil {
		t.Fatalf("DeleteBefore() failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "old" {
		t.Fatalf("Expected to delete [old], got %v", ids)
	}

	// Idempotent: a second run with the same cutoff deletes nothing
	ids, err = s.DeleteBefore(ctx, now)
	if err != nil {
		t.Fatalf("DeleteBefore() retry failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("Expected no deletions on retry, got %v", ids)
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 surviving records, got %d", len(records))
	}
	if records[0].ID != "cutoff" || records[1].ID != "new" {
		t.Errorf("Unexpected survivors: %q, %q", records[0].ID, records[1].ID)
	}
}

func TestSQLiteStorage_DeleteOldest(t *testing.T) {
	s, _ := createTempDB(t)
	defer s.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	appendRecord(t, s, "a", now.Add(-3*time.Hour))
	appendRecord(t, s, "b", now.Add(-2*time.Hour))
	appendRecord(t, s, "c", now.Add(-time.Hour))

	ids, err := s.DeleteOldest(ctx, 2)
	if err != nil {
		t.Fatalf("DeleteOldest() failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 deleted ids, got %v", ids)
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "c" {
		t.Fatalf("Expected only newest record to survive, got %+v", records)
	}

	// n larger than the record count drains the table without error
	ids, err = s.DeleteOldest(ctx, 10)
	if err != nil {
		t.Fatalf("DeleteOldest(10) failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("Expected 1 deleted id, got %v", ids)
	}
}

func TestSQLiteStorage_DeleteAll(t *testing.T) {
	s, _ := createTempDB(t)
	defer s.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		appendRecord(t, s, string(rune('a'+i)), now.Add(time.Duration(i)*time.Minute))
	}

	deleted, err := s.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll() failed: %v", err)
	}
	if deleted != 5 {
		t.Fatalf("Expected 5 deleted, got %d", deleted)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected empty store, got %d records", count)
	}
}

func TestSQLiteStorage_Count(t *testing.T) {
	s, _ := createTempDB(t)
	defer s.Close()

	ctx := context.Background()

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0, got %d", count)
	}

	appendRecord(t, s, "a", time.Now().UTC())

	count, err = s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1, got %d", count)
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	s, dbPath := createTempDB(t)

	appendRecord(t, s, "persisted", time.Now().UTC())
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// Attach to the existing database
	s2, err := NewSQLiteStorage(&SQLiteConfig{Path: dbPath})
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s2.Close()

	records, err := s2.All(context.Background())
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "persisted" {
		t.Fatalf("Expected persisted record after reopen, got %+v", records)
	}
}

func TestSQLiteStorage_CloseIdempotent(t *testing.T) {
	s, _ := createTempDB(t)

	if err := s.Close(); err != nil {
		t.Fatalf("First Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Second Close() failed: %v", err)
	}
}
