package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, 38471, cfg.App.Port)
	require.Equal(t, "https://www.linkedin.com/jobs/search", cfg.Search.BaseURL)
	require.Equal(t, 1500*time.Millisecond, cfg.CardDelay())
	require.Equal(t, 5*time.Second, cfg.RenderTimeout())
	require.Equal(t, 100*time.Millisecond, cfg.PollInterval())
	require.Equal(t, 30*time.Second, cfg.PageTimeout())
	require.Equal(t, time.Minute, cfg.CacheTTL())
	require.Empty(t, cfg.Crawl.Schedule)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 9000
search:
  query: golang engineer
  geo_id: "90000070"
  easy_apply: true
crawl:
  card_delay_ms: 500
  schedule: "0 9 * * *"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.App.Port)
	require.Equal(t, "golang engineer", cfg.Search.Query)
	require.Equal(t, "90000070", cfg.Search.GeoID)
	require.True(t, cfg.Search.EasyApply)
	require.Equal(t, 500*time.Millisecond, cfg.CardDelay())
	require.Equal(t, "0 9 * * *", cfg.Crawl.Schedule)

	// unset keys still get defaults
	require.Equal(t, "https://www.linkedin.com/jobs/search", cfg.Search.BaseURL)
	require.Equal(t, 5*time.Second, cfg.RenderTimeout())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("app: [not a map"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()

	path, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	require.FileExists(t, path)

	// the generated file round-trips through Load with defaults intact
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default().App, cfg.App)
	require.Equal(t, Default().Search, cfg.Search)
	require.Equal(t, Default().Crawl, cfg.Crawl)

	// second call returns the existing file untouched
	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 1234\n"), 0o644))
	again, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	require.Equal(t, path, again)
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, 1234, cfg.App.Port)
}
