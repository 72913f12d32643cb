//go:build integration

package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/executor"
	"github.com/SFTP-RideStatus/ridestatus-installer/internal/migration"
	"github.com/SFTP-RideStatus/ridestatus-installer/internal/tracker"
)

// applyDir loads, sorts, and applies every pending migration in dir.
func applyDir(t *testing.T, ctx context.Context, db *sql.DB, dir string) error {
	t.Helper()

	migrations, err := migration.LoadFromDir(dir)
	require.NoError(t, err)

	exec := executor.New(db, tracker.New(db))

	return exec.Apply(ctx, migration.Sort(migrations))
}

func ledgerFilenames(t *testing.T, ctx context.Context, db *sql.DB) []string {
	t.Helper()

	applied, err := tracker.New(db).GetApplied(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(applied))
	for _, m := range applied {
		names = append(names, m.Filename)
	}

	return names
}

func writeMigration(t *testing.T, dir, name, sql string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644))
}

func TestApply_endToEndScenario(t *testing.T) {
	t.Parallel()

	db := SetupMariaDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeMigration(t, dir, "001_init.sql",
		"CREATE TABLE t (id INT PRIMARY KEY, note VARCHAR(64));")
	writeMigration(t, dir, "002_seed.sql",
		"INSERT INTO t (id, note) VALUES (1, 'seed');")

	// First run applies both and the ledger has two rows.
	require.NoError(t, applyDir(t, ctx, db, dir))
	assert.Equal(t, []string{"001_init.sql", "002_seed.sql"}, ledgerFilenames(t, ctx, db))

	var rows int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&rows))
	assert.Equal(t, 1, rows)

	// Second run applies neither: ledger and data are unchanged.
	require.NoError(t, applyDir(t, ctx, db, dir))
	assert.Equal(t, []string{"001_init.sql", "002_seed.sql"}, ledgerFilenames(t, ctx, db))
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&rows))
	assert.Equal(t, 1, rows, "seed row was not re-inserted")

	// Adding 003 and running again applies only 003.
	writeMigration(t, dir, "003_alter.sql",
		"ALTER TABLE t ADD COLUMN extra INT;")

	require.NoError(t, applyDir(t, ctx, db, dir))
	assert.Equal(t, []string{"001_init.sql", "002_seed.sql", "003_alter.sql"},
		ledgerFilenames(t, ctx, db))
}

func TestApply_ordersLexicographically(t *testing.T) {
	t.Parallel()

	db := SetupMariaDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	// 002 references the table 001 creates, so order matters.
	writeMigration(t, dir, "002_x.sql", "INSERT INTO y (id) VALUES (1);")
	writeMigration(t, dir, "001_y.sql", "CREATE TABLE y (id INT PRIMARY KEY);")

	require.NoError(t, applyDir(t, ctx, db, dir))
	assert.Equal(t, []string{"001_y.sql", "002_x.sql"}, ledgerFilenames(t, ctx, db))
}

func TestApply_partialFailureIsResumable(t *testing.T) {
	t.Parallel()

	db := SetupMariaDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeMigration(t, dir, "001_a.sql", "CREATE TABLE a (id INT);")
	writeMigration(t, dir, "002_b.sql", "CREATE TABLE b (id INT);")
	writeMigration(t, dir, "003_z.sql", "THIS IS NOT SQL;")
	writeMigration(t, dir, "004_c.sql", "CREATE TABLE c (id INT);")

	// The bad file aborts the run; nothing at or after it is recorded.
	require.Error(t, applyDir(t, ctx, db, dir))
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, ledgerFilenames(t, ctx, db))

	// Fix the migration and re-invoke: the run resumes from 003
	// without re-applying 001/002.
	writeMigration(t, dir, "003_z.sql", "CREATE TABLE z (id INT);")

	require.NoError(t, applyDir(t, ctx, db, dir))
	assert.Equal(t, []string{"001_a.sql", "002_b.sql", "003_z.sql", "004_c.sql"},
		ledgerFilenames(t, ctx, db))
}

func TestApply_missingDirectoryIsNoOp(t *testing.T) {
	t.Parallel()

	db := SetupMariaDB(t)
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "does-not-exist")

	require.NoError(t, applyDir(t, ctx, db, dir))
}

func TestApply_changedContentIsNotReapplied(t *testing.T) {
	t.Parallel()

	db := SetupMariaDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeMigration(t, dir, "001_a.sql", "CREATE TABLE a (id INT);")
	require.NoError(t, applyDir(t, ctx, db, dir))

	// Filename tracking only: rewriting the file does not trigger a
	// re-apply (and would fail if it did — the table exists).
	writeMigration(t, dir, "001_a.sql", "CREATE TABLE a (id INT, extra INT);")

	require.NoError(t, applyDir(t, ctx, db, dir))
	assert.Equal(t, []string{"001_a.sql"}, ledgerFilenames(t, ctx, db))
}

func TestApply_multiStatementFile(t *testing.T) {
	t.Parallel()

	db := SetupMariaDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeMigration(t, dir, "001_multi.sql",
		"CREATE TABLE m (id INT PRIMARY KEY);\nINSERT INTO m (id) VALUES (1);\nINSERT INTO m (id) VALUES (2);")

	require.NoError(t, applyDir(t, ctx, db, dir))

	var rows int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM m").Scan(&rows))
	assert.Equal(t, 2, rows)
}
