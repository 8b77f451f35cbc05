package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api", cfg.App.APIPath)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, 5, cfg.Auth.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginLockout())
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoad_PostgresApplicationName(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("APP_NAME", "clinic-east")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "clinic-east", cfg.Postgres.ApplicationName)

	t.Setenv("POSTGRES_APPLICATION_NAME", "clinic-migrator")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "clinic-migrator", cfg.Postgres.ApplicationName)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_IgnoresMalformedInts(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("AUTH_TOKEN_TTL_HOURS", "soon")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL())
	assert.Zero(t, cfg.App.RequestTimeout())
}
