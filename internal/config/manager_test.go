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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9000
scraper:
  base_url: http://localhost:8000
  timeout_ms: 1500
  rate_limit: 0.5
ui:
  async_fetch: false
  session_ttl_min: 5
logger:
  level: debug
  format: console
`)

	cfg, err := NewManager().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, "http://localhost:8000", cfg.Scraper.BaseURL)
	assert.Equal(t, "/scrape", cfg.Scraper.Path)
	assert.False(t, cfg.UI.AsyncFetch)
	assert.Equal(t, 5*time.Minute, cfg.UI.SessionTTL())
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)

	client := cfg.Scraper.ClientConfig()
	assert.Equal(t, 1500*time.Millisecond, client.Timeout)
	assert.Equal(t, 0.5, client.RateLimit)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewManager().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://wellfoundscrap.vercel.app", cfg.Scraper.BaseURL)
	assert.True(t, cfg.UI.AsyncFetch)
	assert.Equal(t, 1, cfg.UI.RefreshSeconds)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("JOBBOARD_SERVER_PORT", "9191")
	t.Setenv("JOBBOARD_SCRAPER_BASE_URL", "http://scraper.internal")

	cfg, err := NewManager().Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "http://scraper.internal", cfg.Scraper.BaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "port out of range", body: "server:\n  port: 70000\n"},
		{name: "empty base url", body: "scraper:\n  base_url: \"\"\n"},
		{name: "zero timeout", body: "scraper:\n  timeout_ms: 0\n"},
		{name: "negative rate", body: "scraper:\n  rate_limit: -1\n"},
		{name: "zero session ttl", body: "ui:\n  session_ttl_min: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager().Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestReload(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	m := NewManager()

	require.Error(t, m.Reload(), "reload before load")

	_, err := m.Load(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9001\n"), 0o644))
	require.NoError(t, m.Reload())
	assert.Equal(t, 9001, m.GetConfig().Server.Port)
}
