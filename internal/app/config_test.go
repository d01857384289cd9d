package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/klassbok/internal/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		path := writeConfig(t, `
[server]
port = ":8080"

[database]
dsn = "roster.db"
`)
		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, ":8080", config.Server.Port)
		assert.Equal(t, "roster.db", config.Database.DSN)
		assert.Equal(t, defaultMigrationsDir, config.Database.MigrationsDir)
		assert.False(t, config.RateLimit.Enabled)
		assert.Equal(t, defaultRequestsPerMinute, config.RateLimit.RequestsPerMinute)
		assert.Equal(t, defaultLimitKeyTemplate, config.RateLimit.KeyTemplate)
	})

	t.Run("full", func(t *testing.T) {
		path := writeConfig(t, `
[server]
port = ":9999"

[database]
dsn = "postgres://u:p@localhost/roster"
migrations_dir = "/srv/migrations"

[ratelimit]
enabled = true
redis_url = "redis://cache:6379/1"
requests_per_minute = 30
key_template = "rl:{client}:{window}"
`)
		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/srv/migrations", config.Database.MigrationsDir)
		assert.True(t, config.RateLimit.Enabled)
		assert.Equal(t, "redis://cache:6379/1", config.RateLimit.RedisURL)
		assert.Equal(t, 30, config.RateLimit.RequestsPerMinute)
		assert.Equal(t, "rl:{client}:{window}", config.RateLimit.KeyTemplate)
	})

	t.Run("missing port", func(t *testing.T) {
		path := writeConfig(t, `
[database]
dsn = "roster.db"
`)
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "port")
	})

	t.Run("missing dsn", func(t *testing.T) {
		path := writeConfig(t, `
[server]
port = ":8080"
`)
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "dsn")
	})

	t.Run("broken toml", func(t *testing.T) {
		path := writeConfig(t, `[server`)
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}

func TestDetectDBType(t *testing.T) {
	assert.Equal(t, store.DBTypePostgres, DetectDBType("postgres://u:p@localhost/db"))
	assert.Equal(t, store.DBTypePostgres, DetectDBType("postgresql://localhost/db"))
	assert.Equal(t, store.DBTypeSQLite, DetectDBType("roster.db"))
	assert.Equal(t, store.DBTypeSQLite, DetectDBType(":memory:"))
}

func TestNewStoreSQLite(t *testing.T) {
	s, err := NewStore(":memory:", "../../migrations")
	require.NoError(t, err)
	defer s.Close()

	students, err := s.ListActiveStudents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, students)
}
