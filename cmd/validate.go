// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/northlake-data/schemadrift/pkg/engine"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the on-disk migration sequence against the recorded ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.Initialize(cmd.Context()); err != nil {
				return err
			}
			if err := e.Validate(cmd.Context(), engine.ModeStrict); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "validation passed")
			return nil
		},
	}
}
