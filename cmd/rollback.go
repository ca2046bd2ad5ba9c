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

func rollbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Revert the most recently applied migration, or one named by --migration",
		RunE:  runRollback,
	}
	flags.RegisterCommon(cmd)
	flags.RegisterApp(cmd)
	cmd.Flags().String("migration", "", "Name of the applied migration to revert; defaults to the latest applied")
	viper.BindPFlag("MIGRATION", cmd.Flags().Lookup("migration"))
	return cmd
}

func runRollback(cmd *cobra.Command, _ []string) error {
	cfg, app, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mgr, err := newManager(cfg, app)
	if err != nil {
		return err
	}
	defer mgr.DB.Close()

	name := flags.Migration()
	label := name
	if label == "" {
		label = "latest applied migration"
	}

	sp, _ := pterm.DefaultSpinner.WithText(fmt.Sprintf("Reverting %s...", label)).Start()
	if err := mgr.RevertMigration(context.Background(), app, name); err != nil {
		sp.Fail(fmt.Sprintf("Failed to revert %s: %s", label, err))
		return err
	}
	sp.Success(fmt.Sprintf("Reverted %s", label))
	return nil
}
