package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestSavedConfigStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "external.json")
	store := NewSavedConfigStore(path)

	cfg := SavedConfig{
		Host:     strPtr("db.example.com"),
		Port:     intPtr(5433),
		Database: strPtr("gaia"),
		User:     strPtr("steward"),
	}
	require.NoError(t, store.Save(cfg))

	loaded := store.Load()
	assert.Equal(t, cfg, loaded)
	assert.False(t, loaded.IsZero())
}

func TestSavedConfigStoreLoadMissing(t *testing.T) {
	store := NewSavedConfigStore(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, store.Load().IsZero())
}

func TestSavedConfigStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "external.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewSavedConfigStore(path)
	assert.True(t, store.Load().IsZero())
}

func TestSavedConfigNeverStoresPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "external.json")
	store := NewSavedConfigStore(path)
	require.NoError(t, store.Save(SavedConfig{Host: strPtr("db.example.com"), User: strPtr("steward")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.Contains(t, string(data), "db.example.com")
}

func TestSavedConfigString(t *testing.T) {
	cfg := SavedConfig{Host: strPtr("db.example.com"), Port: intPtr(5432)}
	s := cfg.String()
	assert.Contains(t, s, `"host":"db.example.com"`)
	assert.Contains(t, s, `"port":5432`)
	assert.Contains(t, s, `"database":null`)
}

func TestDefaultSavedConfigPath(t *testing.T) {
	path, err := DefaultSavedConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(".pgsteward", "external.json"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
}
