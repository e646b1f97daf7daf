// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/northlake-data/schemadrift/cmd/flags"
	"github.com/northlake-data/schemadrift/internal/config"
	"github.com/northlake-data/schemadrift/pkg/engine"
	"github.com/northlake-data/schemadrift/pkg/migration"
)

// Version is set at build time via -ldflags.
var Version = "development"

func init() {
	viper.SetEnvPrefix("SCHEMADRIFT")
	viper.AutomaticEnv()

	flags.PersistentConnectionFlags(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:          "schemadrift",
	Short:        "Schema-evolution engine: migrate, validate, repair and erase a database schema",
	SilenceUsage: true,
	Version:      Version,
}

// Execute registers every subcommand and runs the root command.
func Execute() error {
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(repairCmd())
	rootCmd.AddCommand(eraseCmd())
	rootCmd.AddCommand(infoCmd())

	return rootCmd.Execute()
}

// buildEngine loads configuration from the bound config file (if any),
// applies any CLI-flag overrides, and constructs an Engine ready for a
// single command.
func buildEngine() (*engine.Engine, error) {
	cfg, err := config.Load(flags.ConfigFile())
	if err != nil {
		return nil, err
	}

	if cs := flags.ConnectionString(); cs != "" {
		cfg.ConnectionString = cs
	}
	if driver := flags.Driver(); driver != "" {
		cfg.Driver = driver
	}
	if raw := flags.TargetVersion(); raw != "" {
		v, err := migration.Parse(raw)
		if err != nil {
			return nil, &engine.ConfigurationError{Field: "target-version", Err: err}
		}
		cfg.TargetVersion = v
	}

	return engine.New(cfg, engine.NewLogger()), nil
}
