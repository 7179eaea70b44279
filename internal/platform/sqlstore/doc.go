// Package sqlstore provides SQL-backed implementations of the store
// interfaces. The SQL is written to the common subset understood by
// PostgreSQL (via pgx) and SQLite (via modernc.org/sqlite): positional
// $n placeholders, ON CONFLICT upserts, and JSON stored as text.
//
// Each store accepts a store.DBTX, so the same implementation works on
// a *sql.DB or inside a *sql.Tx obtained from store.RunInTransaction.
package sqlstore
