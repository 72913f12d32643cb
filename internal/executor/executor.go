package executor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/migration"
)

// Progress status constants reported via ProgressEvent.
const (
	StatusStarting  = "applying"
	StatusCompleted = "complete"
	StatusFailed    = "failed"
	StatusSkipped   = "already applied"
	StatusPending   = "pending"
)

// ProgressEvent is emitted by the executor for each migration processed.
type ProgressEvent struct {
	Migration *migration.Migration
	Status    string
	Duration  time.Duration
	Error     error
}

// MigrationTracker abstracts ledger operations for testability.
type MigrationTracker interface {
	EnsureTable(ctx context.Context) error
	IsApplied(ctx context.Context, filename string) (bool, error)
	RecordApplied(ctx context.Context, filename string) error
}

// sqlExecFunc executes a single migration's SQL.
type sqlExecFunc func(ctx context.Context, m *migration.Migration) error

// Executor applies pending migrations in order, recording each success
// in the ledger before moving to the next file. A failed migration
// aborts the run with no ledger row, so a later run retries it and
// everything after it.
//
// Exactly one executor instance is assumed per database; no lock is
// taken against concurrent runs.
type Executor struct {
	db         *sql.DB
	tracker    MigrationTracker
	dryRun     bool
	onProgress func(ProgressEvent)
	execSQL    sqlExecFunc
}

// Option configures an Executor.
type Option func(*Executor)

// WithDryRun enables dry-run mode where no SQL is executed and nothing
// is recorded.
func WithDryRun(b bool) Option {
	return func(e *Executor) { e.dryRun = b }
}

// WithProgressCallback sets a function called for each migration processed.
func WithProgressCallback(fn func(ProgressEvent)) Option {
	return func(e *Executor) { e.onProgress = fn }
}

// New creates an Executor with the given database handle, tracker, and options.
func New(db *sql.DB, t MigrationTracker, opts ...Option) *Executor {
	e := &Executor{
		db:      db,
		tracker: t,
	}

	for _, opt := range opts {
		opt(e)
	}

	// Default set after options so tests can inject their own exec func.
	if e.execSQL == nil {
		e.execSQL = e.executeMigration
	}

	return e
}

// Apply executes pending migrations in the given order. Already-applied
// filenames are skipped; a recorded filename is never re-executed even
// if the file content changed on disk.
func (e *Executor) Apply(ctx context.Context, migrations []migration.Migration) error {
	if err := e.tracker.EnsureTable(ctx); err != nil {
		return err
	}

	for i := range migrations {
		if err := e.applyOne(ctx, &migrations[i]); err != nil {
			return err
		}
	}

	return nil
}

// applyOne handles a single migration: skip if applied, dry-run check,
// execute, record, and fire progress.
func (e *Executor) applyOne(ctx context.Context, m *migration.Migration) error {
	applied, err := e.tracker.IsApplied(ctx, m.Filename)
	if err != nil {
		return fmt.Errorf("checking migration %s: %w", m.Filename, err)
	}

	if applied {
		e.fireProgress(ProgressEvent{Migration: m, Status: StatusSkipped})
		return nil
	}

	if e.dryRun {
		e.fireProgress(ProgressEvent{Migration: m, Status: StatusPending})
		return nil
	}

	e.fireProgress(ProgressEvent{Migration: m, Status: StatusStarting})

	start := time.Now()
	execErr := e.execSQL(ctx, m)
	duration := time.Since(start)

	if execErr != nil {
		e.fireProgress(ProgressEvent{
			Migration: m,
			Status:    StatusFailed,
			Duration:  duration,
			Error:     execErr,
		})

		// No ledger row for the failed file: the next run retries it.
		return fmt.Errorf("executing migration %s: %w", m.Filename, execErr)
	}

	if err := e.tracker.RecordApplied(ctx, m.Filename); err != nil {
		return fmt.Errorf("recording migration %s: %w", m.Filename, err)
	}

	e.fireProgress(ProgressEvent{
		Migration: m,
		Status:    StatusCompleted,
		Duration:  duration,
	})

	return nil
}

// executeMigration runs the full SQL content of a migration as a single
// unit. The connection is opened with multiStatements enabled, so files
// holding several statements execute in one round trip. MariaDB commits
// DDL implicitly, so no transaction is wrapped around the call.
func (e *Executor) executeMigration(ctx context.Context, m *migration.Migration) error {
	if _, err := e.db.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}

	return nil
}

func (e *Executor) fireProgress(event ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}
