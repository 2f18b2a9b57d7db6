// cmd/historian/main.go is an asynchronous historian service that pops game actions from a
// Redis queue and persists them to a PostgreSQL database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/database"
	"github.com/jason-s-yu/uno/internal/historian"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if cfg.PostgresDSN() == "" {
		logrus.Fatal("historian needs DATABASE_URL or POSTGRES_USER and PG_DATABASE")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logrus.Fatal(err)
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		logrus.Fatal(err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logrus.Fatal(err)
	}

	svc := historian.New(
		cache.NewActionQueue(rdb, cfg.HistorianQueueName),
		database.NewLogWriter(pool),
		historian.Options{BatchSize: cfg.HistorianBatchSize, FlushDelay: cfg.HistorianFlush},
		logrus.NewEntry(logrus.StandardLogger()),
	)
	if err := svc.Run(ctx); err != nil {
		logrus.Errorf("historian: %v", err)
	}
}
