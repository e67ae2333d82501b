// Package storage is the thin, transactional storage adapter of spec.md
// §4.8: connection setup, schema init, and batched insert/update
// primitives over a single PostgreSQL session. Grounded on the teacher's
// internal/db.Connection (github.com/lib/pq, database/sql) and its
// internal/etl.Pipeline staging/transform batching style.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/gmorong/fias-ingest/internal/config"
	"github.com/gmorong/fias-ingest/internal/debug"
	"github.com/gmorong/fias-ingest/internal/ingesterr"
)

// Adapter wraps a single PostgreSQL connection scoped to one schema.
type Adapter struct {
	DB     *sql.DB
	Schema string

	// BatchErrors counts batches dropped by the log-and-continue policy
	// of spec.md §7 ("StorageError during a batch write -> rollback the
	// batch, log, continue with the next batch"), keyed by operation.
	BatchErrors *debug.Counters
}

// Open connects to PostgreSQL per opts and returns an Adapter. Per
// spec.md §4.8/§5, the core runs against a single connection in a
// single session — no pool is wanted here, so MaxOpenConns is pinned
// to 1 rather than left at the teacher's multi-connection default.
func Open(opts config.Options) (*Adapter, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		opts.DBHost, opts.DBPort, opts.DBUser, opts.DBPassword, opts.DBName,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, ingesterr.Storage("storage.Open", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, ingesterr.Storage("storage.Open", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Adapter{DB: db, Schema: opts.DBSchema, BatchErrors: debug.NewCounters()}, nil
}

// Close closes the underlying connection.
func (a *Adapter) Close() error {
	return a.DB.Close()
}

// Table returns a schema-qualified table name, e.g. "fias.houses".
func (a *Adapter) Table(name string) string {
	return fmt.Sprintf("%s.%s", a.Schema, name)
}

// Exec runs a statement against the current schema and wraps any
// failure as a StorageError.
func (a *Adapter) Exec(op, query string, args ...interface{}) (sql.Result, error) {
	res, err := a.DB.Exec(query, args...)
	if err != nil {
		return nil, ingesterr.Storage(op, err)
	}
	return res, nil
}

// Query runs a query against the current schema and wraps any failure
// as a StorageError.
func (a *Adapter) Query(op, query string, args ...interface{}) (*sql.Rows, error) {
	rows, err := a.DB.Query(query, args...)
	if err != nil {
		return nil, ingesterr.Storage(op, err)
	}
	return rows, nil
}
