// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relmigrate/relmigrate/cmd/flags"
	"github.com/relmigrate/relmigrate/pkg/manager"
	"github.com/relmigrate/relmigrate/pkg/registry"
	"github.com/relmigrate/relmigrate/pkg/state"
)

func makeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "make",
		Short: "Create a migration, diffing the model registry against migration history unless --empty is set",
		RunE:  runMake,
	}
	flags.RegisterCommon(cmd)
	flags.RegisterApp(cmd)
	cmd.Flags().String("name", "", "Override the generated migration name")
	cmd.Flags().Bool("empty", false, "Create an empty migration with no operations")
	viper.BindPFlag("NAME", cmd.Flags().Lookup("name"))
	viper.BindPFlag("EMPTY", cmd.Flags().Lookup("empty"))
	return cmd
}

func runMake(cmd *cobra.Command, _ []string) error {
	cfg, app, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mgr, err := newManager(cfg, app)
	if err != nil {
		return err
	}
	defer mgr.DB.Close()

	opts := manager.CreateOptions{Name: flags.Name(), Empty: flags.Empty()}

	universe := state.NewUniverse()
	if !opts.Empty {
		reg, err := loadRegistry(cfg)
		if err != nil {
			return err
		}
		universe, err = registry.TargetUniverse(context.Background(), reg)
		if err != nil {
			return err
		}
	}

	sp, _ := pterm.DefaultSpinner.WithText("Diffing model registry...").Start()
	d, err := mgr.CreateMigration(context.Background(), app, universe, opts, fmt.Sprintf("changes for app %q", app))
	if err != nil {
		sp.Fail(fmt.Sprintf("Failed to create migration: %s", err))
		return err
	}
	if d == nil {
		sp.Success("No changes detected; nothing to do")
		return nil
	}
	sp.Success(fmt.Sprintf("Created migration %s/%s at %s", d.App, d.Name, d.Path))
	return nil
}
