package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setLocalEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("AUTH_MODE", "local")
	t.Setenv("LOCAL_JWT_SECRET", "dev-secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setLocalEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, LockBackendMemory, cfg.LockBackend)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	setLocalEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("TIMEZONE", "Europe/Sofia")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("LOCK_BACKEND", "REDIS")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "Europe/Sofia", cfg.Location.String())
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, LockBackendRedis, cfg.LockBackend)
}

func TestFromEnvRejectsMissingSecrets(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH_MODE", "local")
	t.Setenv("LOCAL_JWT_SECRET", "x")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("AUTH_MODE", "clerk")
	t.Setenv("CLERK_SECRET_KEY", "")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "CLERK_SECRET_KEY")
}

func TestFromEnvRejectsBadTimezone(t *testing.T) {
	setLocalEnv(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := FromEnv()
	assert.Error(t, err)
}
