package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultURL, cfg.Redis.URL)
	assert.Equal(t, DefaultDialTimeout, cfg.Redis.DialTimeout)
	assert.Equal(t, DefaultReadTimeout, cfg.Redis.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.Redis.WriteTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gedis.yaml")
	content := []byte(`redis:
  url: redis://10.0.0.1:6380/2
  dial_timeout: 1s
  client_name: lessons
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv("GEDIS_REDIS_READ_TIMEOUT", "250ms")
	t.Setenv("GEDIS_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis://10.0.0.1:6380/2", cfg.Redis.URL)
	assert.Equal(t, "lessons", cfg.Redis.ClientName)
	assert.Equal(t, time.Second, cfg.Redis.DialTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.Redis.WriteTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gedis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redis:\n  url: redis://file:6379/0\n"), 0o644))
	t.Setenv("GEDIS_REDIS_URL", "redis://env:6379/1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis://env:6379/1", cfg.Redis.URL)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("redis: [unterminated"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)

	t.Setenv("GEDIS_REDIS_DIAL_TIMEOUT", "-1s")
	_, err = Load("")
	require.Error(t, err)
}

func TestDefaultURLTargetsDefaultAddr(t *testing.T) {
	opts, err := redis.ParseURL(DefaultURL)
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, opts.Addr)
	assert.Equal(t, 0, opts.DB)
}
