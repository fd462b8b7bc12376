package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("GIN_MODE", "")
	t.Setenv("APP_ADDR", "")
	t.Setenv("PROBE_TIMEOUT", "")
	t.Setenv("SYNC_INTERVAL", "")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", env.AppAddr)
	assert.Equal(t, 2*time.Second, env.ProbeTimeout)
	assert.Equal(t, time.Duration(0), env.SyncInterval)
	assert.Equal(t, "bus_booking_system", env.DBName)
}

func TestLoadEnvFileThenOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_addr: ":9000"
db_name: transit
offline_dir: /var/lib/busbooking
probe_timeout: 1s
sync_interval: 30s
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_ADDR", "")
	t.Setenv("DB_NAME", "override_db")
	t.Setenv("PROBE_TIMEOUT", "")
	t.Setenv("SYNC_INTERVAL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9000", env.AppAddr)
	assert.Equal(t, "override_db", env.DBName)
	assert.Equal(t, "/var/lib/busbooking", env.OfflineDir)
	assert.Equal(t, time.Second, env.ProbeTimeout)
	assert.Equal(t, 30*time.Second, env.SyncInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, env.CORSOrigins)
}

func TestLoadEnvRejectsBadDuration(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PROBE_TIMEOUT", "soon")

	_, err := LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROBE_TIMEOUT")
}

func TestLoadEnvRefusesDefaultSecretInRelease(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PROBE_TIMEOUT", "")
	t.Setenv("SYNC_INTERVAL", "")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	env, err := LoadEnv()
	require.NoError(t, err)
	assert.False(t, env.UsesDefaultSecret())
}

func TestLoadEnvAllowsDefaultSecretInDebug(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PROBE_TIMEOUT", "")
	t.Setenv("SYNC_INTERVAL", "")
	t.Setenv("GIN_MODE", "")
	t.Setenv("JWT_SECRET", "")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.True(t, env.UsesDefaultSecret())
}

func TestLoadEnvRejectsEmptySecretFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt_secret: \"\"\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PROBE_TIMEOUT", "")
	t.Setenv("SYNC_INTERVAL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestDSNCarriesTimeouts(t *testing.T) {
	env := defaults()
	env.DBPassword = "secret"
	dsn := env.DSN()
	assert.Contains(t, dsn, "root:secret@tcp(127.0.0.1:3306)/bus_booking_system")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "timeout=2s")
}
