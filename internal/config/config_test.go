package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads the file", func(t *testing.T) {
		// Given: a complete config file
		path := writeConfig(t, `
log-level: debug
http-port: "8080"
socket-port: "8081"
allowed-origins:
  - https://play.example.com
redis:
  host: redis
  port: "6380"
  snapshot-ttl: 2h
`)

		// When: loading it
		conf, err := Load(path)

		// Then: every value is taken from the file
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, "8081", conf.SocketPort)
		assert.Equal(t, []string{"https://play.example.com"}, conf.AllowedOrigins)
		assert.Equal(t, "redis:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, 2*time.Hour, conf.Redis.SnapshotTTL)
		assert.True(t, conf.Redis.Enabled())
	})

	t.Run("Fills defaults", func(t *testing.T) {
		// Given: an empty config file
		path := writeConfig(t, "{}\n")

		// When: loading it
		conf, err := Load(path)

		// Then: defaults apply
		require.NoError(t, err)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "3000", conf.SocketPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 24*time.Hour, conf.Redis.SnapshotTTL)
		assert.Empty(t, conf.AllowedOrigins)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		// Given: a file and environment variables for the same keys
		path := writeConfig(t, "log-level: info\nredis:\n  host: redis\n")
		t.Setenv("LOG_LEVEL", "warn")
		t.Setenv("REDIS_DISABLED", "true")
		t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

		// When: loading it
		conf, err := Load(path)

		// Then: the environment wins
		require.NoError(t, err)
		assert.Equal(t, "warn", conf.LogLevel)
		assert.False(t, conf.Redis.Enabled())
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, conf.AllowedOrigins)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		require.Error(t, err)
	})
}
