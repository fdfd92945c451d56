package commands

import (
	"github.com/spf13/cobra"

	"github.com/stewardhq/pgsteward/internal/database"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the public schema's tables",
		Long: `List the base tables of the public schema together with their row
counts. Filters combine: --non-const --empty lists tables that are both
non-constant and currently empty.`,
		Example: `  # Every table
  pgsteward tables

  # Non-constant tables that still hold rows
  pgsteward tables --non-const --non-empty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			constFilter, err := boolFilter(cmd.Flags(), "const", "non-const")
			if err != nil {
				return err
			}
			emptyFilter, err := boolFilter(cmd.Flags(), "empty", "non-empty")
			if err != nil {
				return err
			}

			cctx, cleanup, err := NewConnectedCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			_, err = cctx.Manager.Tables(cmd.Context(), database.TableFilter{
				Const: constFilter,
				Empty: emptyFilter,
			}, true)
			return err
		},
	}

	cmd.Flags().Bool("const", false, "List constant tables only")
	cmd.Flags().Bool("non-const", false, "List non-constant tables only")
	cmd.Flags().Bool("empty", false, "List empty tables only")
	cmd.Flags().Bool("non-empty", false, "List tables holding rows only")
	cmd.MarkFlagsMutuallyExclusive("const", "non-const")
	cmd.MarkFlagsMutuallyExclusive("empty", "non-empty")

	return cmd
}
