// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func eraseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "erase",
		Short: "Drop schemas the engine created and empty schemas it found empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.Erase(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "erase complete")
			return nil
		},
	}
}
