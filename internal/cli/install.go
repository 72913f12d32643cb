package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/provision"
	"github.com/SFTP-RideStatus/ridestatus-installer/internal/system"
)

const osReleasePath = "/etc/os-release"

var installCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "install",
	Short: "Provision the appliance",
	Long: `Run the full provisioning sequence: filesystem layout, service
user, packages, deploy key, passwordless sudo, MariaDB bootstrap with
generated credentials, dashboard secret, repository synchronization,
service units, and finally pending schema migrations. Every step checks
current state first; re-running only acts on what diverged.`,
	RunE: runInstall,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	installCmd.Flags().Bool("expand-disk", false, "expand the root volume into free LVM space")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	expandDisk, _ := cmd.Flags().GetBool("expand-disk")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := provision.Preflight(osReleasePath, os.Geteuid()); err != nil {
		return fmt.Errorf("preflight: %w", err)
	}

	log := newLogger(cfg.Verbose)

	st := provision.NewState(cfg, system.NewExecRunner(), log)
	st.ExpandDisk = expandDisk

	runner := provision.NewRunner(provision.InstallSequence()...)
	if err := runner.Run(ctx, st); err != nil {
		return err
	}

	// Migrations run last, against the appliance database with the
	// credentials the sequence generated or loaded.
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = st.Creds.DSN()
	}

	db, err := connectDB(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := runMigrations(ctx, cmd.OutOrStdout(), db, cfg.MigrationsDir, false); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Provisioning complete.")

	return nil
}
