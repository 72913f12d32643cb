package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AppliedMigration is a row from the schema_migrations ledger.
type AppliedMigration struct {
	Filename  string
	AppliedAt time.Time
}

// Tracker manages the schema_migrations ledger table. The set of
// recorded filenames is monotonically non-decreasing: rows are inserted
// on successful application and never updated or deleted.
type Tracker struct {
	db *sql.DB
}

// New creates a Tracker backed by the given database handle.
func New(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

// EnsureTable creates the schema_migrations table if it does not exist.
func (t *Tracker) EnsureTable(ctx context.Context) error {
	_, err := t.db.ExecContext(ctx, createLedgerSQL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTableCreation, err)
	}

	return nil
}

// IsApplied checks whether a migration filename has been recorded as applied.
func (t *Tracker) IsApplied(ctx context.Context, filename string) (bool, error) {
	var exists bool

	err := t.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = ?)`,
		filename,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking if migration %s is applied: %w", filename, err)
	}

	return exists, nil
}

// GetApplied returns all recorded migrations ordered by filename.
func (t *Tracker) GetApplied(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT filename, applied_at FROM schema_migrations ORDER BY filename`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer rows.Close()

	var applied []AppliedMigration

	for rows.Next() {
		var m AppliedMigration
		if err := rows.Scan(&m.Filename, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}

		applied = append(applied, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	return applied, nil
}

// RecordApplied inserts a ledger row for the given filename. The
// applied_at timestamp defaults at insert time on the server side.
func (t *Tracker) RecordApplied(ctx context.Context, filename string) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO schema_migrations (filename) VALUES (?)`,
		filename,
	)
	if err != nil {
		return fmt.Errorf("recording migration %s as applied: %w", filename, err)
	}

	return nil
}
