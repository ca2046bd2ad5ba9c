// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relmigrate/relmigrate/cmd/flags"
	"github.com/relmigrate/relmigrate/pkg/config"
	"github.com/relmigrate/relmigrate/pkg/manager"
	"github.com/relmigrate/relmigrate/pkg/registry"
)

// Version is the tool's version, set at build time via -ldflags.
var Version = "development"

func init() {
	viper.SetEnvPrefix("RELMIGRATE")
	viper.AutomaticEnv()
}

var rootCmd = &cobra.Command{
	Use:          "relmigrate",
	SilenceUsage: true,
	Version:      Version,
}

// Execute runs the root command.
func Execute() error {
	rootCmd.AddCommand(makeCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(rollbackCmd())
	rootCmd.AddCommand(showMigrationsCmd())
	return rootCmd.Execute()
}

// loadConfig resolves --config into a *config.Config and the app this
// invocation operates on. Every subcommand registers its own --config,
// --directory and --app flags under the same viper keys, so they are bound
// again here to the flags of the command actually being run.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	viper.BindPFlag("CONFIG_REF", cmd.Flags().Lookup("config"))
	viper.BindPFlag("DIRECTORY", cmd.Flags().Lookup("directory"))
	viper.BindPFlag("APP", cmd.Flags().Lookup("app"))
	path, dotted := flags.SplitConfigRef(flags.ConfigRef())
	cfg, err := config.Load(path, dotted)
	if err != nil {
		return nil, "", err
	}
	app, err := cfg.ResolveApp(flags.App())
	if err != nil {
		return nil, "", err
	}
	return cfg, app, nil
}

// newManager wires a Manager for the resolved app: a dialect-matched
// database connection plus the migrations directory, assembled fresh per
// command invocation rather than held as long-lived global state.
func newManager(cfg *config.Config, app string) (*manager.Manager, error) {
	connName, err := connectionForApp(cfg, app)
	if err != nil {
		return nil, err
	}
	conn, emitter, err := connect(cfg, connName)
	if err != nil {
		return nil, err
	}
	repoRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	return manager.New(flags.Directory(), repoRoot, conn, emitter), nil
}

// connectionForApp names the connection to use for app: a connection named
// identically to the app if present, else the configuration's default.
func connectionForApp(cfg *config.Config, app string) (string, error) {
	if _, ok := cfg.Connections[app]; ok {
		return app, nil
	}
	return defaultConnection(cfg)
}

// loadRegistry loads the model registry named by cfg.Registry, used by
// `make` to obtain the target schema.
func loadRegistry(cfg *config.Config) (registry.Registry, error) {
	if cfg.Registry == "" {
		return nil, config.ConfigError{Reason: "configuration declares no registry document"}
	}
	data, err := os.ReadFile(cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("reading registry document %q: %w", cfg.Registry, err)
	}
	return registry.LoadStaticRegistry(data)
}
