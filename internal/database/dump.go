package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// dumpTimestampLayout names dump files down to the microsecond.
const dumpTimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// DumpOptions controls Dump.
type DumpOptions struct {
	// External prompts for and dumps an externally reachable database
	// instead of the configured one.
	External bool
	// Const restricts the dump to constant tables when true, to
	// non-constant tables when false, and includes everything when nil.
	Const *bool
}

// connectionProfile is the resolved target of one dump or load.
type connectionProfile struct {
	host     string
	port     int
	database string
	user     string
	password string
}

// Dump writes a data-only SQL dump of the public schema and returns the
// absolute path of the written file. A destination whose basename contains
// a dot names the file itself; anything else is treated as a directory that
// receives a timestamped .sql file.
func (m *Manager) Dump(ctx context.Context, destination string, opts DumpOptions) (string, error) {
	if m.pgDumpPath == "" {
		return "", &MissingUtilityError{Utility: "pg_dump"}
	}

	profile := connectionProfile{
		host:     m.host,
		port:     m.port,
		database: m.database,
		user:     m.user,
		password: m.password,
	}
	if opts.External {
		p, err := m.externalProfile()
		if err != nil {
			return "", err
		}
		profile = p
	}

	// Table selection always comes from the configured database; an
	// external target is expected to carry the same application schema.
	tables, err := m.Tables(ctx, TableFilter{Const: opts.Const}, false)
	if err != nil {
		return "", err
	}

	file, err := resolveDumpPath(destination, time.Now())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o750); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}

	args := []string{
		profile.database,
		"--schema=public",
		"--host", profile.host,
		"--port", strconv.Itoa(profile.port),
		"--username", profile.user,
		"--file", file,
		"--data-only",
		"--disable-triggers",
	}
	for _, t := range tables {
		args = append(args, "--table="+t)
	}

	m.logger.Debug("dumping database", "file", file, "tables", len(tables), "external", opts.External)
	cmd := Command{
		Name: m.pgDumpPath,
		Args: args,
		Env:  map[string]string{"PGPASSWORD": profile.password},
	}
	if err := m.runner.Run(ctx, cmd); err != nil {
		return "", err
	}
	return file, nil
}

// Load replays a SQL dump into the configured database. The whole file is
// applied in a single transaction that stops at the first error.
func (m *Manager) Load(ctx context.Context, file string) error {
	if m.psqlPath == "" {
		return &MissingUtilityError{Utility: "psql"}
	}

	path, err := expandUser(file)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve dump file: %w", err)
	}

	args := []string{
		m.database,
		"--host", m.host,
		"--port", strconv.Itoa(m.port),
		"--username", m.user,
		"--file", abs,
		"--single-transaction",
		"--variable", "ON_ERROR_STOP=1",
	}

	m.logger.Debug("loading dump", "file", abs)
	cmd := Command{
		Name: m.psqlPath,
		Args: args,
		Env:  map[string]string{"PGPASSWORD": m.password},
	}
	return m.runner.Run(ctx, cmd)
}

// externalProfile resolves the externally reachable database to dump. Saved
// answers from earlier runs are offered first; whatever is resolved is saved
// back, without the password.
func (m *Manager) externalProfile() (connectionProfile, error) {
	path := m.savedConfigPath
	if path == "" {
		p, err := DefaultSavedConfigPath()
		if err != nil {
			return connectionProfile{}, err
		}
		path = p
	}
	store := NewSavedConfigStore(path)
	saved := store.Load()

	var chosen SavedConfig
	if !saved.IsZero() {
		fmt.Fprintf(m.out, "Previous external database config: %s\n", saved)
		yes := true
		usePrevious, err := m.prompter.YesNo("Use the previous external database config?", &yes)
		if err != nil {
			return connectionProfile{}, err
		}
		if usePrevious {
			chosen = saved
		}
	}

	var profile connectionProfile
	var err error

	if chosen.Host != nil {
		profile.host = *chosen.Host
	} else {
		fallback := "127.0.0.1"
		if saved.Host != nil {
			fallback = *saved.Host
		}
		if profile.host, err = m.prompter.Input("Database Host", fallback); err != nil {
			return connectionProfile{}, err
		}
	}

	if chosen.Port != nil {
		profile.port = *chosen.Port
	} else {
		if profile.port, err = m.prompter.InputInt("Database Port", saved.Port); err != nil {
			return connectionProfile{}, err
		}
	}

	if chosen.Database != nil {
		profile.database = *chosen.Database
	} else {
		var fallback string
		if saved.Database != nil {
			fallback = *saved.Database
		}
		if profile.database, err = m.prompter.Input("Database Name", fallback); err != nil {
			return connectionProfile{}, err
		}
	}

	if chosen.User != nil {
		profile.user = *chosen.User
	} else {
		var fallback string
		if saved.User != nil {
			fallback = *saved.User
		}
		if profile.user, err = m.prompter.Input("Database User", fallback); err != nil {
			return connectionProfile{}, err
		}
	}

	if profile.password, err = m.prompter.Password("Database Password"); err != nil {
		return connectionProfile{}, err
	}

	if err := store.Save(SavedConfig{
		Host:     &profile.host,
		Port:     &profile.port,
		Database: &profile.database,
		User:     &profile.user,
	}); err != nil {
		return connectionProfile{}, err
	}
	return profile, nil
}

// resolveDumpPath turns destination into the absolute file the dump is
// written to.
func resolveDumpPath(destination string, now time.Time) (string, error) {
	path, err := expandUser(destination)
	if err != nil {
		return "", err
	}
	if !strings.Contains(filepath.Base(path), ".") {
		name := now.UTC().Format(dumpTimestampLayout) + ".sql"
		path = filepath.Join(path, name)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve dump destination: %w", err)
	}
	return abs, nil
}

// expandUser resolves a leading ~ against the current user's home.
func expandUser(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand ~: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
