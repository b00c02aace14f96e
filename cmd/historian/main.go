// cmd/historian/main.go drains room events from Redis and persists them to Postgres.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/dsaduel/internal/cache"
	"github.com/jason-s-yu/dsaduel/internal/config"
	"github.com/jason-s-yu/dsaduel/internal/database"
	"github.com/jason-s-yu/dsaduel/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("historian exited")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	pool, err := database.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	svc := historian.NewService(rdb, cfg.HistorianQueueName, historian.NewPostgresSink(pool), logger.WithField("component", "historian"))
	svc.BatchSize = cfg.HistorianBatchSize
	svc.FlushDelay = cfg.HistorianFlushInterval
	return svc.Run(ctx)
}
