package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "gtfs", cfg.Storage.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 1, cfg.Reconcile.MinRecords)
	assert.Equal(t, 500, cfg.Reconcile.BatchSize)
	assert.False(t, cfg.Reconcile.AllowEmpty)
	assert.Zero(t, cfg.Reconcile.MaxRetireFraction)
	assert.Empty(t, cfg.Reconcile.IdentityFor("stop"))
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("RECONCILE_STOP_IDENTITY", "name,point")
	t.Setenv("RECONCILE_MAX_RETIRE_FRACTION", "0.25")
	t.Setenv("RECONCILE_ALLOW_EMPTY", "true")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"name", "point"}, cfg.Reconcile.IdentityFor("stop"))
	assert.Equal(t, 0.25, cfg.Reconcile.MaxRetireFraction)
	assert.True(t, cfg.Reconcile.Options().AllowEmpty)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_PORT=9191\nRECONCILE_BATCH_SIZE=50\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("RECONCILE_BATCH_SIZE")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9191", cfg.Server.Port)
	assert.Equal(t, 50, cfg.Reconcile.BatchSize)
}

func TestLoadConfig_InvalidRetireFraction(t *testing.T) {
	t.Setenv("RECONCILE_MAX_RETIRE_FRACTION", "1.5")

	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "max_retire_fraction")
}
