package database

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
)

// Command describes one client utility invocation.
type Command struct {
	// Name is the executable to run.
	Name string
	// Args are passed through verbatim. No shell is involved.
	Args []string
	// Env holds extra environment variables for the child process. The
	// connection secret travels here, never on the command line.
	Env map[string]string
}

// Runner executes client utilities.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as child processes of the current one.
type ExecRunner struct {
	Logger *slog.Logger
}

var _ Runner = (*ExecRunner)(nil)

// Run executes cmd and waits for it to finish. A non-zero exit is reported
// as a *CommandError carrying the captured output. Failed invocations are
// never retried.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("running command", "name", cmd.Name, "args", cmd.Args)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Env = os.Environ()
	for k, v := range cmd.Env {
		c.Env = append(c.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		return &CommandError{
			Name:   cmd.Name,
			Args:   cmd.Args,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return nil
}
