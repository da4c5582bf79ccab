package iocache

import (
	"path/filepath"
	"testing"

	"github.com/huangsam/swcache/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateStore(t *testing.T) {
	t.Run("none backend", func(t *testing.T) {
		assert.Error(t, MigrateStore(schema.NoneBackend, "", -1))
	})

	t.Run("sqlite up, down and back", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "swcache.db")

		require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1))
		require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1), "second run is a no-op")

		require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, 0))

		db, err := openDB(schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		var n int
		require.NoError(t, db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", cacheEntriesTable).Scan(&n))
		assert.Zero(t, n, "rolling back to 0 drops the entries table")
		require.NoError(t, db.Close())

		require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, 2))

		store, err := NewSQLStore(schema.SQLiteBackend, dbPath)
		require.NoError(t, err, "opening a store finishes the remaining migrations")
		defer func() { _ = store.Close() }()
		_, err = store.ListActivations(0)
		assert.NoError(t, err)
	})
}
