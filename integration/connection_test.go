//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/database"
)

func TestOpen_pingsOnConnect(t *testing.T) {
	t.Parallel()

	db := SetupMariaDB(t)

	// SetupMariaDB already pinged; verify the handle is usable.
	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpen_unreachableHost(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := database.Open(ctx, database.TCPDSN("u", "p", "127.0.0.1", 1, "nope"))

	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrConnectionFailed)
}
