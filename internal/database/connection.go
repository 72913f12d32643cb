package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

const (
	defaultMaxOpenConns = 2
	defaultMaxIdleConns = 1
)

// Open connects to MariaDB using the given DSN in go-sql-driver format,
// e.g. "user:pass@tcp(127.0.0.1:3306)/ridestatus".
//
// Migration files may contain several statements, so multi-statement
// execution is forced on regardless of what the DSN says. parseTime is
// enabled so TIMESTAMP columns scan into time.Time.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}

	cfg.MultiStatements = true
	cfg.ParseTime = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // close on failed ping, nothing to report

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return db, nil
}

// SocketDSN builds a DSN for a local connection over the MariaDB unix
// socket, as used by the database bootstrap step running as root.
func SocketDSN(user, socket, dbName string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Net = "unix"
	cfg.Addr = socket
	cfg.DBName = dbName

	return cfg.FormatDSN()
}

// TCPDSN builds a DSN for a TCP connection with the given credentials.
func TCPDSN(user, password, host string, port int, dbName string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", host, port)
	cfg.DBName = dbName

	return cfg.FormatDSN()
}
