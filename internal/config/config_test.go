package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"uribeacon/internal/config"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
	require.False(t, cfg.HTTP.EnablePprof)
	require.Equal(t, "", cfg.Beacon.StaticURL)
	require.Equal(t, "http://tiny.cc/C9/", cfg.Beacon.BaseURL)
	require.Equal(t, "locomoco", cfg.Beacon.Secret)
	require.Equal(t, time.Minute, cfg.Beacon.RotationInterval)
	require.Equal(t, int8(-70), cfg.Beacon.TxPower)
	require.Equal(t, 10*time.Second, cfg.GracefulShutdownTimeout)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
logLevel: warn
http:
  addr: ":9090"
  enablePprof: true
beacon:
  staticUrl: "https://www.eff.org/"
  rotationInterval: 5m
  txPower: -20
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.True(t, cfg.HTTP.EnablePprof)
	require.Equal(t, "https://www.eff.org/", cfg.Beacon.StaticURL)
	require.Equal(t, 5*time.Minute, cfg.Beacon.RotationInterval)
	require.Equal(t, int8(-20), cfg.Beacon.TxPower)
	// untouched keys keep their defaults
	require.Equal(t, "http://tiny.cc/C9/", cfg.Beacon.BaseURL)
	require.Equal(t, 10*time.Second, cfg.HTTP.RequestTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BEACON_SECRET", "s3cret")
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "s3cret", cfg.Beacon.Secret)
	require.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("beacon: [not, a, map"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
