package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// setupTestDB creates a temporary database with pragmas and the
// embedded schema applied.
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	cleanup := func() {
		db.Close()
	}
	return db, cleanup
}
