// Package commands implements the pgsteward sub-commands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stewardhq/pgsteward/internal/config"
	"github.com/stewardhq/pgsteward/internal/database"
	"github.com/stewardhq/pgsteward/internal/prompt"
)

// ExitError carries a process exit status through cobra's error path without
// any further message being printed.
type ExitError struct {
	Code int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Manager *database.Manager
}

// NewCommandContext creates a CommandContext with an interactive Manager.
// Returns the context and a cleanup function that must be called (typically
// via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mgr, err := database.New(database.Options{
		Host:               cfg.Host,
		Port:               cfg.Port,
		Database:           cfg.Database,
		User:               cfg.User,
		Password:           cfg.Password,
		Echo:               cfg.Echo,
		SafeMode:           cfg.SafeMode,
		ConstTables:        cfg.ConstTables,
		ConstTablePatterns: cfg.ConstTablePatterns,
		Logger:             logger,
		Prompter:           prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout()),
		Out:                cmd.OutOrStdout(),
	})
	if err != nil {
		return nil, nil, err
	}
	mgr.SetInteractive(true)

	cleanup := func() { _ = mgr.Close() }
	return &CommandContext{Cfg: cfg, Logger: logger, Manager: mgr}, cleanup, nil
}

// NewConnectedCommandContext is NewCommandContext plus a pre-flight ping.
// An unreachable database aborts with a printed message and exit status 1.
func NewConnectedCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cctx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	if !cctx.Manager.Ping(cmd.Context()) {
		cleanup()
		fmt.Fprintln(cmd.ErrOrStderr(), "Unable to connect to the database.")
		return nil, nil, ExitError{Code: 1}
	}
	return cctx, cleanup, nil
}

// getConfig returns the current configuration. Commands constructed outside
// the root command's load cycle fall back to stock local defaults.
func getConfig() *config.Config {
	if cfg := config.Current(); cfg != nil {
		return cfg
	}
	return &config.Config{Host: "127.0.0.1", Port: 5432, Database: "postgres", User: "postgres"}
}

// boolFilter folds a positive/negative flag pair into a tri-state selector:
// nil when neither flag is set.
func boolFilter(flags *pflag.FlagSet, positive, negative string) (*bool, error) {
	yes, err := flags.GetBool(positive)
	if err != nil {
		return nil, err
	}
	no, err := flags.GetBool(negative)
	if err != nil {
		return nil, err
	}
	switch {
	case yes:
		return &yes, nil
	case no:
		v := false
		return &v, nil
	default:
		return nil, nil
	}
}
