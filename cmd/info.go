// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Report the ledger contents and the outstanding migration plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			status, err := e.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "metadata schema: %s\n", status.MetadataSchema)

			fmt.Fprintf(out, "applied migrations (%d):\n", len(status.Applied))
			for _, a := range status.Applied {
				fmt.Fprintf(out, "  %s  %s\n", a.Version.String(), a.Name)
			}

			fmt.Fprintf(out, "pending migrations (%d):\n", len(status.Plan))
			for _, p := range status.Plan {
				fmt.Fprintf(out, "  %s  %s\n", p.Version.String(), p.Name)
			}

			return nil
		},
	}
}
