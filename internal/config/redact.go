package config

import "github.com/go-sql-driver/mysql"

// RedactDSN replaces the password in a MariaDB connection string with
// "***" for log output. Unparseable DSNs and DSNs without a password are
// returned unchanged.
func RedactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return dsn
	}

	if cfg.Passwd == "" {
		return dsn
	}

	cfg.Passwd = "***"

	return cfg.FormatDSN()
}
