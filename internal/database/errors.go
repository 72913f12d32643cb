package database

import "errors"

// ErrInvalidDSN indicates the provided connection string could not be parsed.
var ErrInvalidDSN = errors.New("invalid database DSN")

// ErrConnectionFailed indicates a connection to the database could not be established.
var ErrConnectionFailed = errors.New("database connection failed")
