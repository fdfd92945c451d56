package commands

import (
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the normalized schema snapshot",
		Long: `Read the catalog and print the normalized schema snapshot as indented
JSON, including a content hash that does not depend on catalog scan order.
Comparing hashes across environments detects schema drift.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cctx, cleanup, err := NewConnectedCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			_, err = cctx.Manager.Schema(cmd.Context())
			return err
		},
	}
}
