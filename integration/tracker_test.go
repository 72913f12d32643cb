//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/tracker"
)

func TestTracker_fullLifecycle(t *testing.T) {
	t.Parallel()

	db := SetupMariaDB(t)
	ctx := context.Background()
	tr := tracker.New(db)

	// EnsureTable creates the ledger.
	err := tr.EnsureTable(ctx)
	require.NoError(t, err)

	// EnsureTable is idempotent.
	err = tr.EnsureTable(ctx)
	require.NoError(t, err)

	// No migrations recorded initially.
	applied, err := tr.GetApplied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)

	// IsApplied returns false for an unknown filename.
	ok, err := tr.IsApplied(ctx, "001_init.sql")
	require.NoError(t, err)
	assert.False(t, ok)

	// Record a migration.
	err = tr.RecordApplied(ctx, "001_init.sql")
	require.NoError(t, err)

	// IsApplied returns true after recording.
	ok, err = tr.IsApplied(ctx, "001_init.sql")
	require.NoError(t, err)
	assert.True(t, ok)

	// GetApplied returns the recorded migration with its timestamp.
	applied, err = tr.GetApplied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "001_init.sql", applied[0].Filename)
	assert.False(t, applied[0].AppliedAt.IsZero())

	// Recording the same filename twice violates the primary key:
	// the ledger is append-only and monotonic.
	err = tr.RecordApplied(ctx, "001_init.sql")
	require.Error(t, err)
}

func TestTracker_orderedByFilename(t *testing.T) {
	t.Parallel()

	db := SetupMariaDB(t)
	ctx := context.Background()
	tr := tracker.New(db)

	require.NoError(t, tr.EnsureTable(ctx))

	// Insert out of order.
	require.NoError(t, tr.RecordApplied(ctx, "002_seed.sql"))
	require.NoError(t, tr.RecordApplied(ctx, "001_init.sql"))

	applied, err := tr.GetApplied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "001_init.sql", applied[0].Filename)
	assert.Equal(t, "002_seed.sql", applied[1].Filename)
}
