// Package store: SQLite-backed implementation.
//
// This file owns the connection lifecycle; job_ops.go, worker_ops.go, and
// config_ops.go implement the Store interface's operations on top of it.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions is the permission mode for the database directory.
// User-only, per spec.md §6 ("created on first use with user-only
// permissions").
const DefaultDirPermissions = 0700

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore is the embedded relational store backing the queue.
type SQLiteStore struct {
	db *sql.DB
}

// Opts holds the configurable fields for NewSQLiteStore.
type Opts struct {
	DSN string
}

// Option mutates Opts; NewSQLiteStore takes a variadic list of them.
type Option func(*Opts)

// WithDSN sets the SQLite database file path.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// NewSQLiteStore opens (creating if necessary) the SQLite database at the
// configured DSN, ensures its parent directory exists with user-only
// permissions, and applies migrations.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "dsn_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// busy_timeout lets a second writer block briefly instead of failing
	// immediately under contention; WAL allows concurrent readers with a
	// single writer, matching spec.md §6.
	dsn := cfg.DSN + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("failed to open sqlite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("sqlite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("sqlite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		slog.Error("failed to close sqlite database", "error", err)
		return err
	}
	return nil
}

// Wipe closes the store and deletes the database file and its WAL/SHM
// siblings. It corresponds to the original queuectl's "cleanup" operator
// command (SPEC_FULL.md "SUPPLEMENTED FEATURES").
func (s *SQLiteStore) Wipe(dsn string) error {
	if err := s.Close(); err != nil {
		return err
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		path := dsn + suffix
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}
