package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully and can be repeated
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)
	require.NoError(t, db.RunMigrations())

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", "kv_entries").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count, "table kv_entries not found")
}

// TestOpen_File verifies that a file database keeps its data across reopen
func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genoroot.db")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO kv_entries (key, value) VALUES (?, ?)`, "familyTrees", []byte(`[]`))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var value []byte
	require.NoError(t, db.QueryRow(`SELECT value FROM kv_entries WHERE key = ?`, "familyTrees").Scan(&value))
	require.Equal(t, "[]", string(value))
}
