// SPDX-License-Identifier: Apache-2.0

// Package flags binds the CLI's persistent flags to viper keys, mirroring
// the pattern the rest of the corpus uses for a shared config/flag surface.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func ConfigFile() string { return viper.GetString("CONFIG_FILE") }

func ConnectionString() string { return viper.GetString("connection_string") }

func Driver() string { return viper.GetString("driver") }

func TargetVersion() string { return viper.GetString("target_version") }

func DryRun() bool { return viper.GetBool("DRY_RUN") }

// PersistentConnectionFlags registers the flags shared by every subcommand
// that talks to a database: the config file path, connection string,
// driver name and target version cap.
func PersistentConnectionFlags(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.String("config", "", "Path to a schemadrift configuration file")
	fs.String("connection-string", "", "Database connection string")
	fs.String("driver", "", "Database driver name (default: postgres)")
	fs.String("target-version", "", "Cap Migrate at this version (default: no cap)")

	bind(fs, "CONFIG_FILE", "config")
	bind(fs, "connection_string", "connection-string")
	bind(fs, "driver", "driver")
	bind(fs, "target_version", "target-version")
}

// DryRunFlag registers the --dry-run flag used by `migrate` to preview its
// plan instead of applying it.
func DryRunFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Print the migration plan without applying it")
	bind(cmd.Flags(), "DRY_RUN", "dry-run")
}

func bind(fs *pflag.FlagSet, key, flag string) {
	if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
		panic(err)
	}
}
