package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Cleanup(Reset)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "postgres", cfg.Database)
	assert.Equal(t, "postgres", cfg.User)
	assert.False(t, cfg.SafeMode)
	assert.Empty(t, cfg.ConstTables)
}

func TestLoadConfigFile(t *testing.T) {
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "pgsteward.yaml")
	content := `
host: db.internal
port: 5433
database: gaia
user: steward
safe_mode: true
const_tables:
  - config
  - plans
const_table_patterns:
  - "legacy_.*"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "gaia", cfg.Database)
	assert.Equal(t, "steward", cfg.User)
	assert.True(t, cfg.SafeMode)
	assert.Equal(t, []string{"config", "plans"}, cfg.ConstTables)
	assert.Equal(t, []string{"legacy_.*"}, cfg.ConstTablePatterns)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "pgsteward.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: from-file\n"), 0o600))
	t.Setenv("PGSTEWARD_HOST", "from-env")
	t.Setenv("PGSTEWARD_PORT", "6000")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Host)
	assert.Equal(t, 6000, cfg.Port)
}

func TestLoadEnvListSplitting(t *testing.T) {
	t.Cleanup(Reset)

	t.Setenv("PGSTEWARD_CONST_TABLES", "config, plans ,users")
	t.Setenv("PGSTEWARD_CONST_TABLE_PATTERNS", "legacy_.*")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"config", "plans", "users"}, cfg.ConstTables)
	assert.Equal(t, []string{"legacy_.*"}, cfg.ConstTablePatterns)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Cleanup(Reset)

	t.Setenv("PGSTEWARD_HOST", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "127.0.0.1", "")
	flags.Bool("safe-mode", false, "")
	require.NoError(t, flags.Set("host", "from-flag"))
	require.NoError(t, flags.Set("safe-mode", "true"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Host)
	assert.True(t, cfg.SafeMode)
}

func TestLoadUnchangedFlagDoesNotOverride(t *testing.T) {
	t.Cleanup(Reset)

	t.Setenv("PGSTEWARD_HOST", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "flag-default", "")

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Host)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Cleanup(Reset)

	t.Setenv("PGSTEWARD_PORT", "70000")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{Host: "127.0.0.1", Port: 5432, Database: "gaia", User: "steward"},
		},
		{
			name:    "missing host",
			cfg:     Config{Port: 5432, Database: "gaia", User: "steward"},
			wantErr: "host",
		},
		{
			name:    "missing database",
			cfg:     Config{Host: "127.0.0.1", Port: 5432, User: "steward"},
			wantErr: "database",
		},
		{
			name:    "port out of range",
			cfg:     Config{Host: "127.0.0.1", Port: 99999, Database: "gaia", User: "steward"},
			wantErr: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
