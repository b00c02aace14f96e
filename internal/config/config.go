// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config is read from the environment (and a .env file, loaded by godotenv in main).
type Config struct {
	Port     string `envconfig:"PORT" default:"8000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`

	// StoreBackend holds rooms and questions: memory or postgres.
	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"`
	// QueueBackend holds the waiting list: memory or redis.
	QueueBackend string `envconfig:"QUEUE_BACKEND" default:"memory"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB     int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix string `envconfig:"REDIS_PREFIX" default:"duel:"`

	HistorianEnabled       bool          `envconfig:"HISTORIAN_ENABLED" default:"false"`
	HistorianQueueName     string        `envconfig:"HISTORIAN_QUEUE_NAME" default:"duel_events"`
	HistorianBatchSize     int           `envconfig:"HISTORIAN_BATCH_SIZE" default:"20"`
	HistorianFlushInterval time.Duration `envconfig:"HISTORIAN_FLUSH_INTERVAL" default:"500ms"`

	WaitTTL       time.Duration `envconfig:"WAIT_TTL" default:"10m"`
	OutcomeTTL    time.Duration `envconfig:"OUTCOME_TTL" default:"10m"`
	RoomTTL       time.Duration `envconfig:"ROOM_TTL" default:"2h"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`

	SeedOnStart bool     `envconfig:"SEED_ON_START" default:"true"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
}

// Load reads the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.QueueBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown QUEUE_BACKEND %q", c.QueueBackend)
	}
	if c.HistorianEnabled && c.HistorianQueueName == "" {
		return errors.New("HISTORIAN_QUEUE_NAME is required when the historian is enabled")
	}
	if c.SweepInterval < 0 {
		return errors.New("SWEEP_INTERVAL must not be negative (0 disables sweeping)")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// UsesRedis reports whether any component needs a Redis client.
func (c *Config) UsesRedis() bool {
	return c.QueueBackend == BackendRedis || c.HistorianEnabled
}

// Logger builds the process logger at the configured level.
func (c *Config) Logger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}
