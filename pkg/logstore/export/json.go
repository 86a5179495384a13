package export

import (
	"context"
	"encoding/json"
	"io"

	"logvault-hq/logvault/pkg/logstore"
)

// JSONExporter exports log records to JSON format.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// Export writes the records to the provided writer as a JSON array,
// preserving the order of the input slice.
func (e *JSONExporter) Export(ctx context.Context, records []logstore.Record, w io.Writer) error {
	if len(records) == 0 {
		_, err := w.Write([]byte("[]"))
		if err != nil {
			return logstore.NewExportError("json", 0, err)
		}
		return nil
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return logstore.NewExportError("json", len(records), err)
	}

	if _, err := w.Write(data); err != nil {
		return logstore.NewExportError("json", len(records), err)
	}

	return nil
}
