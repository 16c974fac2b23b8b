package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so no stray .env is read.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("POKEDEX_CONFIG", "")
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigLayers(t *testing.T) {
	dir := isolate(t)

	yml := filepath.Join(dir, "pokedex.yaml")
	require.NoError(t, os.WriteFile(yml, []byte(`
http_addr: ":9090"
upstream:
  base_url: http://localhost:9000/api/v2
  timeout: 3s
  retries: 2
catalog:
  lineage: chain
  move_limit: 6
log:
  format: console
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("POKEDEX_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("POKEDEX_MOVE_LIMIT", "8")
	t.Setenv("POKEDEX_CORS_ORIGINS", "http://a.example, http://b.example")

	// godotenv writes straight into the process environment
	t.Cleanup(func() { os.Unsetenv("POKEDEX_LOG_LEVEL") })

	cfg, err := LoadConfig(yml)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:9000/api/v2", cfg.Upstream.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 2, cfg.Upstream.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.Upstream.RetryBackoff, "untouched fields keep defaults")
	assert.Equal(t, "chain", cfg.Catalog.Lineage)
	assert.Equal(t, 8, cfg.Catalog.MoveLimit, "env wins over file")
	assert.Equal(t, "en", cfg.Catalog.Language)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	dir := isolate(t)
	yml := filepath.Join(dir, "c.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("grpc_addr: \":9091\"\n"), 0o644))
	t.Setenv("POKEDEX_CONFIG", yml)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":9091", cfg.GRPCAddr)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("upstream: [not, a, map]\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	t.Setenv("POKEDEX_CONCURRENCY", "lots")
	t.Setenv("POKEDEX_UPSTREAM_TIMEOUT", "soon")
	_, err = LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POKEDEX_CONCURRENCY")
	assert.Contains(t, err.Error(), "POKEDEX_UPSTREAM_TIMEOUT")
}
