package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("UPSTREAM_BASE_URL", "http://api.internal:9000")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://api.internal:9000", cfg.Upstream.BaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "console-prefs.db", cfg.Preferences.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingUpstream(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("UPSTREAM_BASE_URL", "")
	os.Unsetenv("UPSTREAM_BASE_URL")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7070
upstream:
  base_url: http://localhost:4000
  timeout: 5s
preferences:
  remote_url: http://prefs.internal
collections:
  dir: ./collections
`), 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "http://localhost:4000", cfg.Upstream.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "http://prefs.internal", cfg.Preferences.RemoteURL)
	assert.Equal(t, "./collections", cfg.Collections.Dir)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateSessionBounds(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("UPSTREAM_BASE_URL", "http://api.internal")
	t.Setenv("SESSION_MAX_AGE", "1m")
	t.Setenv("SESSION_IDLE_TIMEOUT", "2m")

	_, err := Load()
	assert.Error(t, err)
}
