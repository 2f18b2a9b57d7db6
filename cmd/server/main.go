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

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/database"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/handlers"
	"github.com/jason-s-yu/uno/internal/hub"
	"github.com/jason-s-yu/uno/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// backend bundles the selected store with the resources it keeps open.
type backend struct {
	store  store.Store
	redis  *redis.Client
	closer func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*backend, error) {
	b := &backend{closer: func() {}}
	switch cfg.StoreBackend {
	case config.BackendMemory:
		b.store = store.NewMemoryStore()

	case config.BackendRedis:
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		b.redis = rdb
		b.store = store.NewRedisStore(rdb, cfg.RedisKeyPrefix)

	case config.BackendPostgres:
		pool, err := database.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		b.store = store.NewPostgresStore(pool)
		b.closer = pool.Close

	case config.BackendSQLite:
		sq, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.store = sq
		b.closer = func() { sq.Close() }

	default:
		return nil, errors.New("unknown store backend " + cfg.StoreBackend)
	}
	logger.Infof("Using %s game store", cfg.StoreBackend)
	return b, nil
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.closer()

	opts := []game.Option{game.WithLogger(logger.WithField("component", "game"))}
	if cfg.PublishActions {
		if b.redis == nil {
			rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
			if err != nil {
				return err
			}
			b.redis = rdb
		}
		opts = append(opts, game.WithRecorder(cache.NewActionQueue(b.redis, cfg.HistorianQueueName)))
		logger.Infof("Publishing actions to %s", cfg.HistorianQueueName)
	}
	if b.redis != nil {
		defer b.redis.Close()
	}

	svc := game.NewService(b.store, opts...)
	defer svc.Close()
	h := hub.New(cfg.HubBuffer, logrus.NewEntry(logger))
	svc.Subscribe(h.HandleStateChange)

	api := handlers.NewServer(svc, h, logger, handlers.Options{
		ClientURL:    cfg.ClientURL,
		WriteTimeout: cfg.WSWriteTimeout,
		PingInterval: cfg.WSPingInterval,
	})
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
