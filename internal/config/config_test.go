package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the loader at an empty .env and a missing secret so the
// host environment does not leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, nil, 0o600))
	t.Setenv("TELEGRAM_BOT_TOKEN_FILE", filepath.Join(dir, "missing"))
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	return env
}

func TestDefaults(t *testing.T) {
	env := isolate(t)

	cfg, err := Load(env)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Pricing.LookupTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Session.IdleTTL)
	assert.Equal(t, 10*time.Minute, cfg.Session.SweepInterval)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, ":memory:", cfg.Cache.DBPath)
	assert.Equal(t, 60, cfg.Telegram.UpdateTimeout)
	assert.Empty(t, cfg.CatalogPath)
	assert.ErrorIs(t, cfg.RequireToken(), ErrNoToken)
}

func TestEnvironmentOverrides(t *testing.T) {
	env := isolate(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", " 123:abc ")
	t.Setenv("LOOKUP_TIMEOUT", "3s")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("PRICE_SERVICE_URL", "http://localhost:8080/estimate")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(env)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.NoError(t, cfg.RequireToken())
	assert.Equal(t, 3*time.Second, cfg.Pricing.LookupTimeout)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "http://localhost:8080/estimate", cfg.Pricing.BaseURL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestSecretFileWins(t *testing.T) {
	env := isolate(t)
	secret := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(secret, []byte("from-secret\n"), 0o600))
	t.Setenv("TELEGRAM_BOT_TOKEN_FILE", secret)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")

	cfg, err := Load(env)
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.Telegram.Token)
}

func TestDotEnvFile(t *testing.T) {
	env := isolate(t)
	require.NoError(t, os.WriteFile(env, []byte("SESSION_IDLE_TTL=2h\n"), 0o600))
	// godotenv never overrides variables that are already set
	os.Unsetenv("SESSION_IDLE_TTL")
	t.Cleanup(func() { os.Unsetenv("SESSION_IDLE_TTL") })

	cfg, err := Load(env)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Session.IdleTTL)
}

func TestExplicitEnvFileMustExist(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultEnvFileIsOptional(t *testing.T) {
	isolate(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = Load()
	assert.NoError(t, err)
}

func TestMalformedValues(t *testing.T) {
	env := isolate(t)
	t.Setenv("LOOKUP_TIMEOUT", "soon")
	t.Setenv("CACHE_ENABLED", "maybe")
	t.Setenv("TELEGRAM_UPDATE_TIMEOUT", "x")

	_, err := Load(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOOKUP_TIMEOUT")
	assert.Contains(t, err.Error(), "CACHE_ENABLED")
	assert.Contains(t, err.Error(), "TELEGRAM_UPDATE_TIMEOUT")
}

func TestInvalidValues(t *testing.T) {
	env := isolate(t)
	t.Setenv("SWEEP_INTERVAL", "0s")

	_, err := Load(env)
	assert.Error(t, err)
}
