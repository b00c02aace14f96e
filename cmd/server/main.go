// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/dsaduel/internal/cache"
	"github.com/jason-s-yu/dsaduel/internal/config"
	"github.com/jason-s-yu/dsaduel/internal/database"
	"github.com/jason-s-yu/dsaduel/internal/handlers"
	"github.com/jason-s-yu/dsaduel/internal/historian"
	"github.com/jason-s-yu/dsaduel/internal/janitor"
	"github.com/jason-s-yu/dsaduel/internal/matchmaking"
	"github.com/jason-s-yu/dsaduel/internal/question"
	"github.com/jason-s-yu/dsaduel/internal/room"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
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
		logger.WithError(err).Fatal("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	var (
		rooms room.Store
		bank  question.Bank
		pool  *pgxpool.Pool
		rdb   *redis.Client
		err   error
	)

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err = database.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		rooms = room.NewPostgresStore(pool)
		bank = question.NewPostgresBank(pool)
	default:
		rooms = room.NewMemoryStore()
		bank = question.NewMemoryBank()
	}

	if cfg.UsesRedis() {
		rdb, err = cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		logger.WithField("addr", cfg.RedisAddr).Info("Connected to Redis")
	}

	var list matchmaking.WaitingList = matchmaking.NewMemoryList()
	if cfg.QueueBackend == config.BackendRedis {
		list = matchmaking.NewRedisList(rdb, cfg.RedisPrefix, cfg.OutcomeTTL)
	}

	var events historian.Publisher = historian.NopPublisher{}
	if cfg.HistorianEnabled {
		events = historian.NewRedisPublisher(rdb, cfg.HistorianQueueName)
	}

	if cfg.SeedOnStart {
		seeded, err := bank.Seed(ctx)
		if err != nil {
			return err
		}
		logger.WithField("seeded", seeded).Info("question bank ready")
	}

	mm := matchmaking.NewMatchmaker(list, rooms, bank, logger)
	mm.WaitTTL = cfg.WaitTTL
	mm.OutcomeTTL = cfg.OutcomeTTL

	api := handlers.NewAPIServer(mm, rooms, bank, events, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Routes(cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
	}

	sweeper := &janitor.Janitor{
		Queue:    mm,
		Rooms:    rooms,
		RoomTTL:  cfg.RoomTTL,
		Interval: cfg.SweepInterval,
		Log:      logger.WithField("component", "janitor"),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"addr":  srv.Addr,
			"store": cfg.StoreBackend,
			"queue": cfg.QueueBackend,
		}).Info("Running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
