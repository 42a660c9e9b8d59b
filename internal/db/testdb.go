package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
// The pool holds a single connection.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return newTestDB(t, ":memory:")
}

// NewTestFileDB creates a schema-initialized database file under t.TempDir().
// Unlike NewTestDB its pool opens several connections, so concurrent callers
// really compete for the write lock.
func NewTestFileDB(t *testing.T) *sql.DB {
	t.Helper()
	return newTestDB(t, filepath.Join(t.TempDir(), "izposoja.sqlite3"))
}

func newTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
