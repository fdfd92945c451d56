// Package database administers an application PostgreSQL database and
// provides typed data access on top of the same engine.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stewardhq/pgsteward/internal/platform"
	"github.com/stewardhq/pgsteward/internal/prompt"
)

// connRecycle bounds the lifetime of pooled connections so stale ones are
// replaced instead of reused.
const connRecycle = 5 * time.Minute

// Options configures a Manager.
type Options struct {
	// Host is the database host. An "external:container" pair selects the
	// second half inside a container and the first half outside.
	Host string
	// Port is the TCP port of the database server. Zero means 5432.
	Port int
	// Database is the name of the database to operate on.
	Database string
	// User is the role used for every connection.
	User string
	// Password is the connection secret.
	Password string

	// Echo logs every SQL statement issued through the ORM face.
	Echo bool
	// SafeMode refuses destructive operations unconditionally.
	SafeMode bool

	// ConstTables lists tables treated as constant by exact name.
	ConstTables []string
	// ConstTablePatterns lists regular expressions, matched from the start
	// of the name, that mark further tables as constant.
	ConstTablePatterns []string

	// Logger receives debug output. If nil, a discard logger is used.
	Logger *slog.Logger
	// Prompter collects interactive answers. If nil, a terminal prompter
	// on stdin/stdout is used.
	Prompter prompt.Prompter
	// Out receives interactive output. If nil, stdout is used.
	Out io.Writer
	// Runner executes client utilities. If nil, an ExecRunner is used.
	Runner Runner

	// LookPath resolves utility names. If nil, exec.LookPath is used.
	LookPath func(string) (string, error)
	// SavedConfigPath overrides the saved external profile location.
	SavedConfigPath string
}

// Manager owns the engine for one PostgreSQL database and carries out the
// administrative operations against it. A Manager is safe to create without
// a reachable server; connections are made per operation.
type Manager struct {
	db  *sql.DB
	orm *gorm.DB

	host     string
	port     int
	database string
	user     string
	password string

	safeMode   bool
	classifier *TableClassifier

	logger   *slog.Logger
	prompter prompt.Prompter
	out      io.Writer
	runner   Runner

	// interactive marks dispatcher-driven use. It gates the printing that
	// library callers do not want.
	interactive bool

	pgDumpPath string
	psqlPath   string

	savedConfigPath string
}

// New creates a Manager from opts. No connection is attempted.
func New(opts Options) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	classifier, err := NewTableClassifier(opts.ConstTables, opts.ConstTablePatterns)
	if err != nil {
		return nil, err
	}

	host := selectHost(opts.Host, platform.InContainer())
	port := opts.Port
	if port == 0 {
		port = 5432
	}

	dsn := buildDSN(host, port, opts.Database, opts.User, opts.Password)
	logger.Debug("opening engine", "host", host, "port", port, "database", opts.Database)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}
	db.SetConnMaxLifetime(connRecycle)

	gormLog := gormlogger.Discard
	if opts.Echo {
		gormLog = gormlogger.Default.LogMode(gormlogger.Info)
	}
	orm, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:               gormLog,
		DisableAutomaticPing: true,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	m := &Manager{
		db:              db,
		orm:             orm,
		host:            host,
		port:            port,
		database:        opts.Database,
		user:            opts.User,
		password:        opts.Password,
		safeMode:        opts.SafeMode,
		classifier:      classifier,
		logger:          logger,
		prompter:        opts.Prompter,
		out:             opts.Out,
		runner:          opts.Runner,
		savedConfigPath: opts.SavedConfigPath,
	}
	if m.prompter == nil {
		m.prompter = prompt.NewTerminal(os.Stdin, os.Stdout)
	}
	if m.out == nil {
		m.out = os.Stdout
	}
	if m.runner == nil {
		m.runner = &ExecRunner{Logger: logger}
	}

	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if p, err := lookPath("pg_dump"); err == nil {
		m.pgDumpPath = p
	}
	if p, err := lookPath("psql"); err == nil {
		m.psqlPath = p
	}

	return m, nil
}

// SetInteractive marks the manager as dispatcher-driven. Interactive
// managers print listings and snapshots and default to asking before
// destructive work.
func (m *Manager) SetInteractive(interactive bool) {
	m.interactive = interactive
}

// Ping reports whether the database accepts connections. Unreachability is
// reported as false, never as an error.
func (m *Manager) Ping(ctx context.Context) bool {
	if err := m.db.PingContext(ctx); err != nil {
		m.logger.Debug("ping failed", "error", err)
		return false
	}
	return true
}

// Close releases the engine and every pooled connection.
func (m *Manager) Close() error {
	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close engine: %w", err)
	}
	return nil
}

// selectHost resolves an "external:container" host pair. Plain hosts pass
// through unchanged.
func selectHost(host string, inContainer bool) string {
	external, container, found := strings.Cut(host, ":")
	if !found {
		return host
	}
	if inContainer {
		return container
	}
	return external
}

// buildDSN constructs a key/value connection string for the pgx driver.
func buildDSN(host string, port int, database, user, password string) string {
	if host == "" {
		host = "localhost"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=disable",
		quoteDSNValue(host), port, quoteDSNValue(database))

	if user != "" {
		dsn += " user=" + quoteDSNValue(user)
	}
	if password != "" {
		dsn += " password=" + quoteDSNValue(password)
	}

	return dsn
}

// quoteDSNValue quotes a keyword/value parameter when it needs quoting.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
