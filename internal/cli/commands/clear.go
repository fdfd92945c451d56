package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stewardhq/pgsteward/internal/database"
)

// NewClearCommand creates the clear command.
func NewClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Truncate every non-constant table",
		Long: `Truncate the database's tables and realign their sequences.

The affected tables are listed and a confirmation is asked before anything
happens. Constant tables are spared unless --include-const is given. In
safe mode the operation refuses outright.`,
		Example: `  # Truncate everything but the constant tables
  pgsteward clear

  # Truncate the constant tables too
  pgsteward clear --include-const`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			includeConst, err := cmd.Flags().GetBool("include-const")
			if err != nil {
				return err
			}

			cctx, cleanup, err := NewConnectedCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cctx.Manager.Clear(cmd.Context(), database.ClearOptions{IncludeConst: includeConst}); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Database cleared.")
			return nil
		},
	}

	cmd.Flags().Bool("include-const", false, "Also truncate constant tables")

	return cmd
}
