package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/migration"
	"github.com/SFTP-RideStatus/ridestatus-installer/internal/tracker"
)

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status",
	Short: "Show migration status",
	Long: `Display which migration files have been applied, when, and
which are still pending.`,
	RunE: runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	if cfg.DatabaseDSN == "" {
		return errDatabaseDSNRequired
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := connectDB(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer db.Close()

	tr := tracker.New(db)
	if err := tr.EnsureTable(ctx); err != nil {
		return err
	}

	applied, err := tr.GetApplied(ctx)
	if err != nil {
		return err
	}

	appliedSet := make(map[string]bool, len(applied))

	out := cmd.OutOrStdout()

	for _, m := range applied {
		appliedSet[m.Filename] = true
		fmt.Fprintf(out, "  applied  %s  (%s)\n", m.Filename, m.AppliedAt.Format("2006-01-02 15:04:05"))
	}

	migrations, err := migration.LoadFromDir(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	pending := 0

	for _, m := range migration.Sort(migrations) {
		if appliedSet[m.Filename] {
			continue
		}

		fmt.Fprintf(out, "  pending  %s\n", m.Filename)
		pending++
	}

	fmt.Fprintf(out, "%d applied, %d pending.\n", len(applied), pending)

	return nil
}
