// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/relmigrate/relmigrate/cmd/flags"
	"github.com/relmigrate/relmigrate/pkg/manager"
)

func showMigrationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "showmigrations",
		Short: "List migrations for an app, marking which are applied",
		RunE:  runShowMigrations,
	}
	flags.RegisterCommon(cmd)
	flags.RegisterApp(cmd)
	return cmd
}

func runShowMigrations(cmd *cobra.Command, _ []string) error {
	cfg, app, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mgr, err := newManager(cfg, app)
	if err != nil {
		return err
	}
	defer mgr.DB.Close()

	ordered, err := mgr.Discover(app)
	if err != nil {
		return err
	}
	applied, err := mgr.Applied(context.Background())
	if err != nil {
		return err
	}

	pterm.DefaultBasicText.Printf("%s\n", app)
	for _, d := range ordered {
		mark := "[ ]"
		if applied[manager.AppliedKey{App: d.App, Name: d.Name}] {
			mark = "[x]"
		}
		fmt.Printf(" %s %s\n", mark, d.Name)
	}
	return nil
}
