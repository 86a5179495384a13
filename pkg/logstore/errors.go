package logstore

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable indicates the persistent location could not be
// opened or created. Open reports it to the caller while still returning a
// usable degraded handle.
var ErrStorageUnavailable = errors.New("log storage unavailable")

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // Backend type ("sqlite", "memory")
	Operation string // Operation that failed ("append", "query", "delete", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// WriteError represents a record that could not be durably committed.
// Write failures are delivered on the engine's error channel, never
// returned synchronously to the appending caller.
type WriteError struct {
	RecordID string // Record identifier, empty if the record was dropped before commit
	Cause    error  // Underlying error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("write error [record_id=%s]: %v", e.RecordID, e.Cause)
	}
	return fmt.Sprintf("write error: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *WriteError) Unwrap() error {
	return e.Cause
}

// NewWriteError creates a new WriteError.
func NewWriteError(recordID string, cause error) *WriteError {
	return &WriteError{
		RecordID: recordID,
		Cause:    cause,
	}
}

// ReadError represents a failed read. It is returned synchronously to the
// caller, which may retry.
type ReadError struct {
	Cause error // Underlying error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("read error: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ReadError) Unwrap() error {
	return e.Cause
}

// NewReadError creates a new ReadError.
func NewReadError(cause error) *ReadError {
	return &ReadError{Cause: cause}
}

// SweepError represents a failed expiration sweep. Sweep failures are
// transient: the cycle is abandoned and retried on the next trigger.
type SweepError struct {
	Retention string // Human-readable retention setting ("168h", "max_records=1000")
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *SweepError) Error() string {
	return fmt.Sprintf("sweep error [retention=%s]: %v", e.Retention, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SweepError) Unwrap() error {
	return e.Cause
}

// NewSweepError creates a new SweepError.
func NewSweepError(retention string, cause error) *SweepError {
	return &SweepError{
		Retention: retention,
		Cause:     cause,
	}
}

// ExportError represents an error during record export.
type ExportError struct {
	Format      string // Export format ("json", "csv")
	RecordCount int    // Number of records being exported
	Cause       error  // Underlying error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, record_count=%d]: %v", e.Format, e.RecordCount, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new ExportError.
func NewExportError(format string, recordCount int, cause error) *ExportError {
	return &ExportError{
		Format:      format,
		RecordCount: recordCount,
		Cause:       cause,
	}
}
