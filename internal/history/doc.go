// Package history records completed conversions in a SQLite ledger under the
// state directory.
//
// Each successful conversion appends one row keyed by its run id. The ledger
// backs the "chanmap history" command and is never consulted by the
// conversion itself; callers treat a failure to record as a warning.
//
// The database uses WAL mode with a busy timeout, and every write retries on
// SQLITE_BUSY with exponential backoff so concurrent chanmap invocations can
// share one ledger. Schema changes bump schemaVersion; a mismatch surfaces as
// ErrSchemaMismatch rather than a silent migration.
package history
