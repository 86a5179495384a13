package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"logvault-hq/logvault/pkg/logstore"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 4
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 2
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/logs.db",
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the logstore.Storage interface using SQLite.
type SQLiteStorage struct {
	db        *sql.DB
	config    *SQLiteConfig
	logger    *slog.Logger
	closeOnce sync.Once
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, logstore.NewStorageError("sqlite", "open", fmt.Errorf("db path cannot be empty"))
	}
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = 4
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 2
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "logstore.storage.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, logstore.NewStorageError("sqlite", "open", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return logstore.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return logstore.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return logstore.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return logstore.NewStorageError("sqlite", "insert_schema_version", err)
	}

	// Verify schema version. The schema is append-only compatible; a
	// version from the future is refused rather than migrated.
	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return logstore.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return logstore.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Append persists one record.
func (s *SQLiteStorage) Append(ctx context.Context, record *logstore.Record) error {
	if record == nil {
		return logstore.NewStorageError("sqlite", "append", fmt.Errorf("record cannot be nil"))
	}
	if record.ID == "" {
		return logstore.NewStorageError("sqlite", "append", fmt.Errorf("record id cannot be empty"))
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO log_records (id, created_at, level, label, session, text)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.CreatedAt.UTC().UnixNano(),
		string(record.Level),
		record.Label,
		record.Session,
		record.Text,
	)
	if err != nil {
		return logstore.NewStorageError("sqlite", "append", err)
	}

	return nil
}

// All returns every record ordered by created_at ascending, insertion
// order on ties.
func (s *SQLiteStorage) All(ctx context.Context) ([]*logstore.Record, error) {
	return s.query(ctx, "all", `
		SELECT id, created_at, level, label, session, text
		FROM log_records
		ORDER BY created_at ASC, seq ASC
	`)
}

// Query returns the records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *logstore.Query) ([]*logstore.Record, error) {
	if query == nil {
		query = &logstore.Query{}
	}

	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT id, created_at, level, label, session, text FROM log_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY created_at ASC, seq ASC"

	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
	} else if query.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET
		sqlQuery += " LIMIT -1"
	}
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	return s.query(ctx, "query", sqlQuery, args...)
}

// Count returns the number of stored records.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM log_records").Scan(&count)
	if err != nil {
		return 0, logstore.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteBefore removes every record with created_at strictly before cutoff
// and returns the identifiers of the removed records. The delete operates
// on the created_at index; record bodies are never read.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	return s.deleteReturningIDs(ctx, "delete_before", `
		DELETE FROM log_records WHERE created_at < ? RETURNING id
	`, cutoff.UTC().UnixNano())
}

// DeleteOldest removes the n oldest records and returns their identifiers.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, n int64) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	return s.deleteReturningIDs(ctx, "delete_oldest", `
		DELETE FROM log_records
		WHERE seq IN (
			SELECT seq FROM log_records ORDER BY created_at ASC, seq ASC LIMIT ?
		)
		RETURNING id
	`, n)
}

// DeleteAll removes every record and returns the number removed.
func (s *SQLiteStorage) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM log_records")
	if err != nil {
		return 0, logstore.NewStorageError("sqlite", "delete_all", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, logstore.NewStorageError("sqlite", "delete_all", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend.
// Close is idempotent and safe to call multiple times.
func (s *SQLiteStorage) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		if s.db != nil {
			// Run a final checkpoint so the WAL is folded into the main file
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
		s.logger.Info("SQLite storage closed")
	})

	if closeErr != nil {
		return logstore.NewStorageError("sqlite", "close", closeErr)
	}
	return nil
}

// query executes a SELECT over log_records and scans the result rows.
func (s *SQLiteStorage) query(ctx context.Context, operation, sqlQuery string, args ...interface{}) ([]*logstore.Record, error) {
	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, logstore.NewStorageError("sqlite", operation, err)
	}
	defer rows.Close()

	records := []*logstore.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, logstore.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, logstore.NewStorageError("sqlite", operation, err)
	}

	return records, nil
}

// deleteReturningIDs executes a DELETE ... RETURNING id statement and
// collects the identifiers of the deleted rows.
func (s *SQLiteStorage) deleteReturningIDs(ctx context.Context, operation, sqlQuery string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, logstore.NewStorageError("sqlite", operation, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, logstore.NewStorageError("sqlite", "scan", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, logstore.NewStorageError("sqlite", operation, err)
	}

	return ids, nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func buildWhereClause(query *logstore.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.Start != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, query.Start.UTC().UnixNano())
	}
	if query.End != nil {
		conditions = append(conditions, "created_at < ?")
		args = append(args, query.End.UTC().UnixNano())
	}

	if query.Level != "" {
		conditions = append(conditions, "level = ?")
		args = append(args, string(query.Level))
	}
	if query.Label != "" {
		conditions = append(conditions, "label = ?")
		args = append(args, query.Label)
	}
	if query.Session != "" {
		conditions = append(conditions, "session = ?")
		args = append(args, query.Session)
	}

	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}

	return whereClause, args
}

// scanRecord scans a database row into a Record.
func scanRecord(rows *sql.Rows) (*logstore.Record, error) {
	var record logstore.Record
	var createdAtNanos int64
	var level string

	err := rows.Scan(
		&record.ID,
		&createdAtNanos,
		&level,
		&record.Label,
		&record.Session,
		&record.Text,
	)
	if err != nil {
		return nil, err
	}

	record.CreatedAt = time.Unix(0, createdAtNanos).UTC()
	record.Level = logstore.Level(level)

	return &record, nil
}
