package export

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"logvault-hq/logvault/pkg/logstore"
)

// CSVExporter exports log records to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes the records to the provided writer in CSV format, one row
// per record, preserving the order of the input slice.
func (e *CSVExporter) Export(ctx context.Context, records []logstore.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return logstore.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := writer.Write(recordToRow(record)); err != nil {
			return logstore.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return logstore.NewExportError("csv", len(records), err)
	}

	return nil
}

// headerRow returns the CSV column names.
func headerRow() []string {
	return []string{"id", "created_at", "level", "label", "session", "text"}
}

// recordToRow flattens a record into a CSV row.
func recordToRow(record logstore.Record) []string {
	return []string{
		record.ID,
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(record.Level),
		record.Label,
		record.Session,
		record.Text,
	}
}
