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
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "hojas_vida_logyser", cfg.Storage.Bucket)
	assert.Equal(t, 7*24*time.Hour, cfg.Storage.SignedURLExpiry)
	assert.Equal(t, 60*time.Second, cfg.Render.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Render.GracePeriod)
	assert.Equal(t, int64(1200), cfg.Render.ViewportWidth)
	assert.Equal(t, int64(800), cfg.Render.ViewportHeight)
	assert.Equal(t, 12.0, cfg.Render.MarginMM)
	assert.Equal(t, 1, cfg.Render.RasterRetries)
}

func TestLoadFrom_YAMLOverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
server:
  port: "9000"
storage:
  driver: local
  bucket: test-bucket
  signed_url_expiry: 1h
render:
  timeout: 30s
  raster_retries: 0
`)
	cfg, err := LoadFrom(p)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
	assert.Equal(t, "test-bucket", cfg.Storage.Bucket)
	assert.Equal(t, time.Hour, cfg.Storage.SignedURLExpiry)
	assert.Equal(t, 30*time.Second, cfg.Render.Timeout)
	assert.Equal(t, 0, cfg.Render.RasterRetries)
	// untouched sections keep their defaults
	assert.Equal(t, 5*time.Second, cfg.Render.GracePeriod)
}

func TestLoadFrom_EnvWinsOverFile(t *testing.T) {
	p := writeConfig(t, "storage:\n  bucket: from-file\n")
	t.Setenv("GCS_BUCKET", "from-env")
	t.Setenv("SIGNED_URL_EXPIRES_MS", "60000")
	t.Setenv("PORT", "7070")

	cfg, err := LoadFrom(p)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Storage.Bucket)
	assert.Equal(t, time.Minute, cfg.Storage.SignedURLExpiry)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestLoadFrom_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{name: "unknown driver", yml: "storage:\n  driver: ftp\n"},
		{name: "zero timeout", yml: "render:\n  timeout: 0s\n"},
		{name: "negative retries", yml: "render:\n  raster_retries: -1\n"},
		{name: "zero expiry", yml: "storage:\n  signed_url_expiry: 0s\n"},
		{name: "empty bucket", yml: "storage:\n  bucket: \"\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tc.yml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_UsesConfigPathEnv(t *testing.T) {
	p := writeConfig(t, "server:\n  port: \"6060\"\n")
	t.Setenv("CONFIG_PATH", p)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.Server.Port)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
