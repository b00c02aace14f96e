package config

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets keys for the duration of the test. envconfig treats a set but
// empty variable as a value, so defaults only apply when the key is absent.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

var configKeys = []string{
	"PORT", "LOG_LEVEL", "STORE_BACKEND", "QUEUE_BACKEND", "DATABASE_URL",
	"HISTORIAN_ENABLED", "WAIT_TTL", "ROOM_TTL", "SWEEP_INTERVAL", "SEED_ON_START", "CORS_ORIGINS",
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, configKeys...)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, BackendMemory, cfg.QueueBackend)
	assert.Equal(t, 10*time.Minute, cfg.WaitTTL)
	assert.Equal(t, 2*time.Hour, cfg.RoomTTL)
	assert.True(t, cfg.SeedOnStart)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORSOrigins)
	assert.False(t, cfg.UsesRedis())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t, configKeys...)
	t.Setenv("PORT", "9090")
	t.Setenv("QUEUE_BACKEND", "redis")
	t.Setenv("ROOM_TTL", "30m")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.RoomTTL)
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, logrus.WarnLevel, cfg.Logger().GetLevel())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			StoreBackend:  BackendMemory,
			QueueBackend:  BackendMemory,
			SweepInterval: time.Minute,
			LogLevel:      "info",
		}
	}

	cfg := base()
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.StoreBackend = BackendPostgres
	assert.Error(t, cfg.Validate(), "postgres without DATABASE_URL")

	cfg.DatabaseURL = "postgres://localhost/duel"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.QueueBackend = "kafka"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.SweepInterval = 0
	assert.NoError(t, cfg.Validate(), "zero interval disables the janitor")

	cfg.SweepInterval = -time.Second
	assert.Error(t, cfg.Validate())
}
