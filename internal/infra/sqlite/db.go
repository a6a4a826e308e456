// Package sqlite implements the inventory store and donation ledger over a
// single SQLite database, so one allocation's three writes (allocation
// insert, donation status flip, inventory increment) share one transaction.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle and implements domain.Store.
type DB struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string, logger *zap.Logger) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows one writer; a second connection would turn lock
	// contention into spurious SQLITE_BUSY failures.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{db: sqlDB, logger: logger}
	if err := db.Migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an existing *sql.DB without running migrations. Used by tests
// that inject a mocked handle.
func New(sqlDB *sql.DB, logger *zap.Logger) *DB {
	return &DB{db: sqlDB, logger: logger}
}

// Close closes the underlying database.
func (db *DB) Close() error { return db.db.Close() }

// Migrate applies all schema migrations in order.
// Each string is a single SQL statement (SQLite executes one at a time).
func (db *DB) Migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	db.logger.Debug("schema migrations applied", zap.Int("statements", len(Migrations())))
	return nil
}

// isBusy reports whether err is SQLite's lock-contention failure, which the
// engine maps to its conflict-retry path.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
