package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"newsmentor/db"
	"newsmentor/internal/app"
	"newsmentor/internal/config"
	"newsmentor/internal/telemetry"
)

func main() {
	interval := flag.Duration("interval", 0, "refresh period; 0 refreshes once and exits")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logCloser, err := telemetry.InitLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("error initializing logger: %v", err)
	}
	defer logCloser.Close()

	if cfg.RedisURL == "" {
		log.Fatalf("REDIS_URL is required to warm the news cache")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := db.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer rdb.Close()

	feed := app.NewsFeed(cfg, rdb, nil)

	for {
		failed := app.RefreshAll(ctx, feed)
		slog.Info("refresh complete", "failed", failed)

		if *interval <= 0 {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(*interval):
		}
	}
}
