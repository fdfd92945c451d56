package database

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSafeMode is returned when a destructive operation is attempted
	// while safe mode is active.
	ErrSafeMode = errors.New("clearing the database is not allowed in safe mode")

	// ErrCancelled is returned when the operator declines a confirmation
	// prompt. Nothing has been modified when it is returned.
	ErrCancelled = errors.New("action cancelled")
)

// MissingUtilityError reports that a required client utility could not be
// found on PATH.
type MissingUtilityError struct {
	Utility string
}

func (e *MissingUtilityError) Error() string {
	return fmt.Sprintf("%s is not available on PATH", e.Utility)
}

// CommandError reports a client utility exiting non-zero, together with the
// output it produced.
type CommandError struct {
	Name   string
	Args   []string
	Stdout string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Name, e.Err)
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		msg += ": " + detail
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
