package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, int64(65536), cfg.ReadLimit)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 64, cfg.SendBuffer)
	assert.Equal(t, "drop", cfg.SlowObserverPolicy)
	assert.Equal(t, "none", cfg.TraceExporter)
	assert.Equal(t, 10, cfg.AnalyzeRateLimit)
	assert.Equal(t, time.Minute, cfg.AnalyzeRateWindow)
	assert.Equal(t, *Default(), *cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	yaml := "mode: debug\nport: 9000\nping_period: 10s\nslow_observer_policy: kick\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(yaml), 0o644))

	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("RELAY_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9100, cfg.Port, "env wins over file")
	assert.Equal(t, 10*time.Second, cfg.PingPeriod)
	assert.Equal(t, "kick", cfg.SlowObserverPolicy)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_ENV", "missing")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RELAY_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("RELAY_LOG_LEVEL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	bad := *cfg
	bad.Port = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.SendBuffer = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.PingPeriod = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.AnalyzeRateWindow = 0
	assert.Error(t, bad.Validate())
	bad.AnalyzeRateLimit = 0
	assert.NoError(t, bad.Validate(), "window is irrelevant when limiting is off")

	t.Setenv("RELAY_PORT", "70000")
	chdir(t, t.TempDir())
	_, err := Load()
	assert.Error(t, err)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
