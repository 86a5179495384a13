package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
)

func TestCSVExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewCSVExporter(true)

	if err := exporter.Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}

	header := rows[0]
	wantHeader := []string{"id", "created_at", "level", "label", "session", "text"}
	for i, col := range wantHeader {
		if header[i] != col {
			t.Errorf("Header column %d: expected %q, got %q", i, col, header[i])
		}
	}

	if rows[1][0] != "rec-1" || rows[2][0] != "rec-2" {
		t.Errorf("Record order not preserved: %q, %q", rows[1][0], rows[2][0])
	}
	if rows[1][1] != "2026-03-15T12:00:00Z" {
		t.Errorf("Unexpected timestamp format: %q", rows[1][1])
	}
	if rows[2][5] != "query timed out, retrying" {
		t.Errorf("Text with comma not preserved: %q", rows[2][5])
	}
}

func TestCSVExporter_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewCSVExporter(false)

	if err := exporter.Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows without header, got %d", len(rows))
	}
	if rows[0][0] != "rec-1" {
		t.Errorf("Expected first row to be a record, got %q", rows[0][0])
	}
}

func TestCSVExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewCSVExporter(true)

	if err := exporter.Export(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	// Just the header row
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "id,") {
		t.Errorf("Expected only a header row, got %q", buf.String())
	}
}

func TestCSVExporter_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	exporter := NewCSVExporter(false)

	if err := exporter.Export(ctx, sampleRecords(), &buf); err == nil {
		t.Fatal("Expected error from cancelled context")
	}
}
