// SPDX-License-Identifier: Apache-2.0

// Package flags binds the CLI's per-command flags into viper: the
// --config/--app/--name/--empty/--directory/--migration surface shared
// across the make/migrate/rollback/showmigrations subcommands.
package flags

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ConfigRef returns the --config flag value: a path to a configuration
// document, optionally followed by ":" and a dotted path resolving a
// sub-node within it that names connections and apps.
func ConfigRef() string {
	return viper.GetString("CONFIG_REF")
}

// SplitConfigRef splits a --config value into its file path and dotted
// sub-path, the two arguments pkg/config.Load expects.
func SplitConfigRef(ref string) (path, dotted string) {
	if i := strings.Index(ref, ":"); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

func App() string        { return viper.GetString("APP") }
func Name() string       { return viper.GetString("NAME") }
func Empty() bool        { return viper.GetBool("EMPTY") }
func Directory() string  { return viper.GetString("DIRECTORY") }
func Migration() string  { return viper.GetString("MIGRATION") }
func DryRun() bool       { return viper.GetBool("DRY_RUN") }

// RegisterCommon adds and binds the flags common to every subcommand
// (--config, --directory). Command-specific flags are bound by the caller.
func RegisterCommon(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to a configuration document, optionally suffixed \":dotted.path\"")
	cmd.Flags().String("directory", "migrations", "Migrations root directory")
	cmd.MarkFlagRequired("config")

	viper.BindPFlag("CONFIG_REF", cmd.Flags().Lookup("config"))
	viper.BindPFlag("DIRECTORY", cmd.Flags().Lookup("directory"))
}

// RegisterApp binds --app, present on every subcommand that must resolve a
// single app to operate on.
func RegisterApp(cmd *cobra.Command) {
	cmd.Flags().String("app", "", "App to operate on; required if the configuration declares more than one")
	viper.BindPFlag("APP", cmd.Flags().Lookup("app"))
}
