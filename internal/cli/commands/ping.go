package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the database answers",
		Long:  `Open a connection to the configured database and report whether it answers.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cctx.Manager.Ping(cmd.Context()) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Unable to connect to the database.")
				return ExitError{Code: 1}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database is reachable.")
			return nil
		},
	}
}
