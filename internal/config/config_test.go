package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 77
session:
  ttl: 12h
dating:
  age_ceiling: 80
`)
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("DATING_MIN_AGE", "21")
	t.Setenv("DATING_AGE_FLOOR", "21")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.CoreConfig().Telegram.Token)
	assert.Equal(t, int64(77), cfg.Core.Telegram.AdminID)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Session.PruneInterval)
	assert.Equal(t, 21, cfg.Dating.MinAge)
	assert.Equal(t, 80, cfg.Dating.AgeCeiling)
	assert.False(t, cfg.UsesPostgres())
}

func TestNormalizeRejectsBadStorage(t *testing.T) {
	cfg := &Config{}
	cfg.Core.Telegram.Token = "t"
	cfg.Storage.Driver = "mongo"
	assert.Error(t, Normalize(cfg))

	cfg.Storage.Driver = "postgres"
	assert.Error(t, Normalize(cfg))

	cfg.Database.Host, cfg.Database.Name = "db", "iskra"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, "5432", cfg.Database.Port)
}

func TestNormalizeAgeBounds(t *testing.T) {
	cfg := &Config{Dating: DatingConfig{MinAge: 18, AgeFloor: 16}}
	cfg.Core.Telegram.Token = "t"
	assert.Error(t, Normalize(cfg))
}
