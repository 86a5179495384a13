// Package export provides exporters for log records.
//
// Two formats are supported:
//
//   - JSON: the full record as a JSON array, optionally pretty-printed.
//     Used by the retention sweeper for archive-before-delete.
//   - CSV: one row per record with an optional header, for spreadsheet
//     consumption.
//
// Exporters preserve the order of the input slice; callers pass records
// already ordered by creation time.
package export
