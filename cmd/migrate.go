// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relmigrate/relmigrate/cmd/flags"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending migrations for an app",
		RunE:  runMigrate,
	}
	flags.RegisterCommon(cmd)
	flags.RegisterApp(cmd)
	cmd.Flags().Bool("dry-run", false, "Print the pending migrations' SQL instead of applying them; never touches the ledger")
	viper.BindPFlag("DRY_RUN", cmd.Flags().Lookup("dry-run"))
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, app, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mgr, err := newManager(cfg, app)
	if err != nil {
		return err
	}
	defer mgr.DB.Close()

	if flags.DryRun() {
		sql, err := mgr.GetPendingMigrationsSQL(context.Background(), app)
		if err != nil {
			return err
		}
		fmt.Print(sql)
		return nil
	}

	sp, _ := pterm.DefaultSpinner.WithText("Applying pending migrations...").Start()
	results, err := mgr.ApplyMigrations(context.Background(), app)
	if err != nil {
		sp.Fail(fmt.Sprintf("Failed to apply migrations: %s", err))
		return err
	}
	if len(results) == 0 {
		sp.Success("Database is up to date; no migrations to apply")
		return nil
	}
	for _, r := range results {
		pterm.Success.Printf("Applied %s/%s\n", r.App, r.Name)
	}
	sp.Success(fmt.Sprintf("Applied %d migration(s)", len(results)))
	return nil
}
