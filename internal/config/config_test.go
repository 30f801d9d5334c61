package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "clock", cfg.Attendance.StatusRule)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET_KEY")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SESSION_TTL", "forever")

	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_TTL")
}

func TestValidate_PostgreSQLStoreNeedsKey(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SESSION_STORE", "postgresql")
	t.Setenv("DB_PASSWORD", "pw")

	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_ENCRYPTION_KEY")

	t.Setenv("SESSION_ENCRYPTION_KEY", "key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/hris_console?sslmode=disable", cfg.DatabaseURL())
}

func TestValidate_StatusRule(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("ATTENDANCE_STATUS_RULE", "guess")

	_, err := Load()
	assert.ErrorContains(t, err, "ATTENDANCE_STATUS_RULE")
}

func TestValidate_RedisStore(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SESSION_STORE", "Redis")

	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_ENCRYPTION_KEY")

	t.Setenv("SESSION_ENCRYPTION_KEY", "key")
	t.Setenv("REDIS_DB", "2")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
}
