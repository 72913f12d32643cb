//go:build integration

package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/database"
)

const (
	mariadbImage = "mariadb:11"
	testDB       = "ridestatus_test"
	testUser     = "ridestatus"
	testPassword = "ridestatus"
)

// SetupMariaDB starts a MariaDB 11 container and returns a connection
// opened through the installer's database package. The container and
// connection are cleaned up when the test completes.
func SetupMariaDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        mariadbImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MARIADB_DATABASE":             testDB,
			"MARIADB_USER":                 testUser,
			"MARIADB_PASSWORD":             testPassword,
			"MARIADB_RANDOM_ROOT_PASSWORD": "yes",
		},
		WaitingFor: wait.ForLog("mariadbd: ready for connections").
			WithOccurrence(1).
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	dsn := database.TCPDSN(testUser, testPassword, host, port.Int(), testDB)

	connectCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	db, err := database.Open(connectCtx, dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
