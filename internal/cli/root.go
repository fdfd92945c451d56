// Package cli provides the command-line interface for pgsteward.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stewardhq/pgsteward/internal/cli/commands"
	"github.com/stewardhq/pgsteward/internal/config"
	"github.com/stewardhq/pgsteward/internal/database"
)

var cfgFile string

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pgsteward",
		Short: "PostgreSQL database administration toolkit",
		Long: `pgsteward administers a PostgreSQL database: data-only dumps and
restores, guarded truncation with sequence realignment, table listings,
and normalized schema snapshots.

Connection settings come from pgsteward.yaml, PGSTEWARD_* environment
variables (a .env file in the working directory is honored), and flags,
in ascending precedence. The password is read from the environment only;
there is no password flag.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cfg.Verbose)
			cmd.SetContext(config.ContextWithLogger(cmd.Context(), logger))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// Global persistent flags. The password deliberately has no flag; it
	// would land in shell history and process listings.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./pgsteward.yaml)")
	rootCmd.PersistentFlags().String("host", "", "Database host, optionally an external:container pair")
	rootCmd.PersistentFlags().Int("port", 0, "Database port")
	rootCmd.PersistentFlags().String("database", "", "Database name")
	rootCmd.PersistentFlags().String("user", "", "Database user")
	rootCmd.PersistentFlags().Bool("echo", false, "Log every SQL statement")
	rootCmd.PersistentFlags().Bool("safe-mode", false, "Refuse destructive operations")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewPingCommand())
	rootCmd.AddCommand(commands.NewDumpCommand())
	rootCmd.AddCommand(commands.NewLoadCommand())
	rootCmd.AddCommand(commands.NewClearCommand())
	rootCmd.AddCommand(commands.NewTablesCommand())
	rootCmd.AddCommand(commands.NewSchemaCommand())

	return rootCmd
}

// Execute runs the root command and maps its outcome onto a process exit
// status.
func Execute() int {
	rootCmd := NewRootCmd()
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	var exitErr commands.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, database.ErrCancelled) {
		// The cancellation message has already been printed.
		return 1
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
