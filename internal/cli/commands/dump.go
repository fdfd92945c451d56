package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stewardhq/pgsteward/internal/database"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <destination>",
		Short: "Write a data-only SQL dump",
		Long: `Dump the public schema's data to a SQL file using pg_dump.

A destination whose base name contains a dot names the file itself; any
other destination is treated as a directory that receives a timestamped
.sql file. With --external, the connection details of an externally
reachable database are prompted for, and its password is passed to
pg_dump through the process environment only.`,
		Example: `  # Timestamped dump into ./dumps
  pgsteward dump ./dumps

  # Exact file
  pgsteward dump ./dumps/staging.sql

  # Dump only the constant tables of an external database
  pgsteward dump ./dumps --external --const`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, args[0])
		},
	}

	cmd.Flags().Bool("external", false, "Prompt for and dump an externally reachable database")
	cmd.Flags().Bool("const", false, "Dump constant tables only")
	cmd.Flags().Bool("non-const", false, "Dump non-constant tables only")
	cmd.MarkFlagsMutuallyExclusive("const", "non-const")

	return cmd
}

func runDump(cmd *cobra.Command, destination string) error {
	external, err := cmd.Flags().GetBool("external")
	if err != nil {
		return err
	}
	constFilter, err := boolFilter(cmd.Flags(), "const", "non-const")
	if err != nil {
		return err
	}

	cctx, cleanup, err := NewConnectedCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	file, err := cctx.Manager.Dump(cmd.Context(), destination, database.DumpOptions{
		External: external,
		Const:    constFilter,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Dump written to %s\n", file)
	return nil
}
