// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"blockdocs/internal/database"
)

// New returns a migrated sqlite database stored under t.TempDir.
func New(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "blockdocs.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
