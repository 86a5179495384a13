package storage

// SchemaVersion is the current database schema version. The schema is
// additive-only: new columns may be appended in later versions, existing
// columns are never changed or removed.
const SchemaVersion = 1

// Schema contains the SQL statements to create the log record schema.
const Schema = `
-- Log records table. seq preserves insertion order and breaks ordering
-- ties between records sharing a created_at timestamp.
CREATE TABLE IF NOT EXISTS log_records (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,

    -- UTC creation time in nanoseconds since the Unix epoch.
    created_at INTEGER NOT NULL,

    level TEXT NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    session TEXT NOT NULL DEFAULT '',
    text TEXT NOT NULL DEFAULT ''
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for ordering, expiration and session filtering
CREATE INDEX IF NOT EXISTS idx_log_records_created_at ON log_records(created_at);
CREATE INDEX IF NOT EXISTS idx_log_records_session ON log_records(session);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
