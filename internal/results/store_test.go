package results

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswathmantle-create/game/assets"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db, assets.Migrations()))
	return db
}

func TestMigrate(t *testing.T) {
	t.Run("Should be idempotent", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, Migrate(db, assets.Migrations()))

		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
		assert.Equal(t, 1, n)
	})
}

func TestMigrate_SelfManaged(t *testing.T) {
	const rebuild = `
PRAGMA foreign_keys=OFF;
BEGIN TRANSACTION;
CREATE TABLE items_new (id INTEGER PRIMARY KEY, name TEXT NOT NULL DEFAULT '', note TEXT);
INSERT INTO items_new (id, name) SELECT id, name FROM items;
DROP TABLE items;
ALTER TABLE items_new RENAME TO items;
COMMIT;
PRAGMA foreign_keys=ON;
`
	fsys := fstest.MapFS{}
	fsys["001_items.sql"] = &fstest.MapFile{Data: []byte(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT);`)}
	fsys["002_rebuild_items.sql"] = &fstest.MapFile{Data: []byte(rebuild)}

	t.Run("Should run scripts that manage their own transaction", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "m.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		require.NoError(t, Migrate(db, fsys))
		require.NoError(t, Migrate(db, fsys))

		var applied int
		require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&applied))
		assert.Equal(t, 2, applied)

		_, err = db.Exec(`INSERT INTO items (name, note) VALUES ('a', 'rebuilt')`)
		require.NoError(t, err)
	})

	t.Run("Should not record a failing self-managed script", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "m.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		bad := fstest.MapFS{}
		bad["001_broken.sql"] = &fstest.MapFile{Data: []byte("BEGIN TRANSACTION;\nCREATE TABLE half (id INTEGER);\nCREATE TABLE nope (;\nCOMMIT;")}
		require.Error(t, Migrate(db, bad))

		var applied int
		require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&applied))
		assert.Zero(t, applied)

		// The open transaction was rolled back, so the database stays writable.
		var tables int
		require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE name='half'`).Scan(&tables))
		assert.Zero(t, tables)
		_, err = db.Exec(`CREATE TABLE after_failure (id INTEGER)`)
		require.NoError(t, err)
	})
}

func TestStore_Leaderboard(t *testing.T) {
	ctx := context.Background()
	s := NewStore(openTestDB(t))

	for _, w := range []Win{
		{SessionID: "a", GridSize: 7, Moves: 20},
		{SessionID: "b", GridSize: 7, Moves: 12},
		{SessionID: "c", GridSize: 5, Moves: 8},
		{SessionID: "d", GridSize: 7, Moves: 15},
	} {
		require.NoError(t, s.RecordWin(ctx, w))
	}

	top, err := s.Leaderboard(ctx, 7, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 12, top[0].Moves)
	assert.Equal(t, 15, top[1].Moves)
	assert.False(t, top[0].CreatedAt.IsZero())

	top, err = s.Leaderboard(ctx, 9, 0)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestStore_Batches(t *testing.T) {
	ctx := context.Background()
	s := NewStore(openTestDB(t))

	require.NoError(t, s.RecordBatch(ctx, BatchRun{ID: "one", Filename: "a.xlsx", Rows: 3, Processed: 2, Failed: 1}))
	require.NoError(t, s.RecordBatch(ctx, BatchRun{ID: "two", Filename: "b.csv", Rows: 1, Skipped: 1}))
	require.NoError(t, s.RecordBatch(ctx, BatchRun{ID: "one", Filename: "dup"}))

	runs, err := s.RecentBatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "two", runs[0].ID)
	assert.Equal(t, "one", runs[1].ID)
	assert.Equal(t, "a.xlsx", runs[1].Filename)
	assert.Equal(t, 2, runs[1].Processed)
}
