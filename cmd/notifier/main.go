package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/humsafar/dealer-api/internal/config"
	"github.com/humsafar/dealer-api/internal/events"
	kafkax "github.com/humsafar/dealer-api/internal/kafka"
	"github.com/humsafar/dealer-api/internal/notifier"
	"github.com/humsafar/dealer-api/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notifier.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-notifier",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, events.TopicOrderPlaced, cfg.NotifierWorkers)

	go func() {
		slog.Info("notifier consumer started",
			"group", cfg.NotifierGroup, "topic", events.TopicOrderPlaced, "workers", cfg.NotifierWorkers)
		if err := cons.Start(ctx, svc.HandleOrderPlaced); err != nil {
			slog.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	slog.Info("shutting down notifier")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
