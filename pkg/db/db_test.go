package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "index.db")

	database, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer database.Close()

	var journalMode string
	require.NoError(t, database.Get(&journalMode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", journalMode)

	var foreignKeys int
	require.NoError(t, database.Get(&foreignKeys, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, foreignKeys)
}

func TestDefaultDBPath(t *testing.T) {
	t.Setenv("SKILLET_BASE_PATH", "/tmp/skillet-test")
	path, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/skillet-test", "index.db"), path)

	t.Setenv("SKILLET_BASE_PATH", "")
	path, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Contains(t, path, filepath.Join(".skillet", "index.db"))
}

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()
	database, err := Open(ctx, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer database.Close()

	migrations := []Migration{
		{
			Version:     20250802000000,
			Description: "add notes column",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec("ALTER TABLE items ADD COLUMN notes TEXT")
				return err
			},
		},
		{
			Version:     20250801000000,
			Description: "create items table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)")
				return err
			},
			Down: func(tx *sql.Tx) error {
				_, err := tx.Exec("DROP TABLE items")
				return err
			},
		},
	}

	runner := NewMigrationRunner(database)
	require.NoError(t, runner.Run(ctx, migrations))

	// Out-of-order input is applied in version order
	versions, err := runner.GetAppliedVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{20250801000000, 20250802000000}, versions)

	_, err = database.Exec("INSERT INTO items (name, notes) VALUES ('a', 'b')")
	require.NoError(t, err)

	// Re-running is a no-op
	require.NoError(t, runner.Run(ctx, migrations))
	versions, err = runner.GetAppliedVersions(ctx)
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestMigrationRunnerRollback(t *testing.T) {
	ctx := context.Background()
	database, err := Open(ctx, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer database.Close()

	runner := NewMigrationRunner(database)

	// Nothing applied yet
	require.NoError(t, runner.Rollback(ctx, nil))

	withDown := []Migration{
		{
			Version:     20250801000000,
			Description: "create items table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec("CREATE TABLE items (id INTEGER PRIMARY KEY)")
				return err
			},
			Down: func(tx *sql.Tx) error {
				_, err := tx.Exec("DROP TABLE items")
				return err
			},
		},
	}
	require.NoError(t, runner.Run(ctx, withDown))
	require.NoError(t, runner.Rollback(ctx, withDown))

	versions, err := runner.GetAppliedVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, versions)

	noDown := []Migration{
		{
			Version:     20250803000000,
			Description: "irreversible",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec("CREATE TABLE audit (id INTEGER PRIMARY KEY)")
				return err
			},
		},
	}
	require.NoError(t, runner.Run(ctx, noDown))
	err = runner.Rollback(ctx, noDown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rollback function")
}
