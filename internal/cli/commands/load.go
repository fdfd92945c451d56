package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Replay a SQL dump into the database",
		Long: `Apply a dump file to the configured database using psql.

The whole file runs in a single transaction and stops at the first error,
so a broken dump leaves the database untouched.`,
		Example: `  pgsteward load ./dumps/2026-08-23T10:11:12.123456Z.sql`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx, cleanup, err := NewConnectedCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cctx.Manager.Load(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s\n", args[0])
			return nil
		},
	}
}
