package provision

import (
	"context"
	"fmt"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/database"
)

// MariaDBServiceStep makes sure the MariaDB server is enabled and running.
type MariaDBServiceStep struct{}

func (MariaDBServiceStep) Name() string { return "mariadb-service" }

func (MariaDBServiceStep) Needed(ctx context.Context, st *State) (bool, error) {
	// is-active exits non-zero when the unit is not running.
	if _, err := st.Run.Run(ctx, "systemctl", "is-active", "--quiet", "mariadb"); err != nil {
		return true, nil
	}

	return false, nil
}

func (MariaDBServiceStep) Apply(ctx context.Context, st *State) error {
	if _, err := st.Run.Run(ctx, "systemctl", "enable", "--now", "mariadb"); err != nil {
		return fmt.Errorf("enabling mariadb: %w", err)
	}

	return nil
}

// DatabaseBootstrapStep creates the appliance database and its user with
// the generated credentials. It connects as local root over the MariaDB
// unix socket, the way a fresh mariadb-server install authenticates.
type DatabaseBootstrapStep struct{}

func (DatabaseBootstrapStep) Name() string { return "database-bootstrap" }

func (DatabaseBootstrapStep) Needed(ctx context.Context, st *State) (bool, error) {
	if st.Creds == nil {
		return false, fmt.Errorf("database credentials not loaded")
	}

	// If the generated credentials already work, the bootstrap ran before.
	db, err := database.Open(ctx, st.Creds.DSN())
	if err != nil {
		return true, nil
	}

	db.Close() //nolint:errcheck // probe connection

	return false, nil
}

func (DatabaseBootstrapStep) Apply(ctx context.Context, st *State) error {
	db, err := database.Open(ctx, database.SocketDSN("root", st.Cfg.MariaDBSocket, ""))
	if err != nil {
		return fmt.Errorf("connecting as root over %s: %w", st.Cfg.MariaDBSocket, err)
	}
	defer db.Close()

	creds := st.Creds

	// Identifiers come from config, the password is generated hex; both
	// are safe to interpolate, and DDL cannot be parameterized anyway.
	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4", creds.Name),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", creds.User, creds.Password),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO '%s'@'%%'", creds.Name, creds.User),
		"FLUSH PRIVILEGES",
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrapping database %s: %w", creds.Name, err)
		}
	}

	return nil
}
