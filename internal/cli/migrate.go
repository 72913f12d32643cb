package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/config"
	"github.com/SFTP-RideStatus/ridestatus-installer/internal/database"
	"github.com/SFTP-RideStatus/ridestatus-installer/internal/executor"
	"github.com/SFTP-RideStatus/ridestatus-installer/internal/migration"
	"github.com/SFTP-RideStatus/ridestatus-installer/internal/tracker"
)

// errDatabaseDSNRequired is returned when no connection string is configured.
var errDatabaseDSNRequired = errors.New(
	"database DSN is required (set --database-dsn, RIDESTATUS_DATABASE_DSN, or database_dsn in config)",
)

var migrateCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply every migration file not yet recorded in the ledger, in
lexicographic filename order, recording each success before moving on.
A failed migration aborts the run without a ledger entry, so the next
invocation retries it.`,
	RunE: runMigrate,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	migrateCmd.Flags().Bool("dry-run", false, "show what would be applied without executing")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	if cfg.DatabaseDSN == "" {
		return errDatabaseDSNRequired
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := connectDB(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer db.Close()

	return runMigrations(ctx, cmd.OutOrStdout(), db, cfg.MigrationsDir, dryRun)
}

func connectDB(ctx context.Context, cfg *config.Config, out io.Writer) (*sql.DB, error) {
	fmt.Fprintf(out, "Connecting to %s\n", config.RedactDSN(cfg.DatabaseDSN))

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	db, err := database.Open(connectCtx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return db, nil
}

// runMigrations loads, sorts, and applies migrations, printing a
// per-file progress line and a final summary.
func runMigrations(ctx context.Context, out io.Writer, db *sql.DB, dir string, dryRun bool) error {
	migrations, err := migration.LoadFromDir(dir)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	if len(migrations) == 0 {
		fmt.Fprintln(out, "No migration files found.")
		return nil
	}

	sorted := migration.Sort(migrations)

	applied := 0
	skipped := 0
	pending := 0

	exec := executor.New(db, tracker.New(db),
		executor.WithDryRun(dryRun),
		executor.WithProgressCallback(func(event executor.ProgressEvent) {
			switch event.Status {
			case executor.StatusStarting:
				fmt.Fprintf(out, "  applying %s ... ", event.Migration.Filename)
			case executor.StatusCompleted:
				fmt.Fprintf(out, "complete (%s)\n", event.Duration.Truncate(time.Millisecond))
				applied++
			case executor.StatusSkipped:
				fmt.Fprintf(out, "  %s already applied\n", event.Migration.Filename)
				skipped++
			case executor.StatusPending:
				fmt.Fprintf(out, "  %s pending\n", event.Migration.Filename)
				pending++
			case executor.StatusFailed:
				fmt.Fprintf(out, "FAILED\n")
				fmt.Fprintf(out, "    Error: %v\n", event.Error)
			}
		}),
	)

	if dryRun {
		fmt.Fprintln(out, "--- DRY RUN (no changes will be made) ---")
	}

	if err := exec.Apply(ctx, sorted); err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(out, "Dry run complete: %d migration(s) pending, %d already applied.\n",
			pending, skipped)
	} else {
		fmt.Fprintf(out, "Migrations complete: %d applied, %d skipped.\n", applied, skipped)
	}

	return nil
}
