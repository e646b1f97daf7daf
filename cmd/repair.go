// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func repairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Rewrite stale checksums on already-applied ledger rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.Repair(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) repaired\n", e.NbRepair)
			return nil
		},
	}
}
