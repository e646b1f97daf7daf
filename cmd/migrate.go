// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/northlake-data/schemadrift/cmd/flags"
)

func migrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database up to the configured target version",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			if flags.DryRun() {
				status, err := e.Status(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "plan (%d pending):\n", len(status.Plan))
				for _, p := range status.Plan {
					fmt.Fprintf(out, "  %s  %s\n", p.Version.String(), p.Name)
				}
				return nil
			}

			if err := e.Migrate(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", e.NbMigration)
			return nil
		},
	}

	flags.DryRunFlag(migrate)
	return migrate
}
