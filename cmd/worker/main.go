package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airreserve/config"
	"github.com/Domenick1991/airreserve/internal/bootstrap"
	"github.com/Domenick1991/airreserve/internal/logger"
	"github.com/Domenick1991/airreserve/internal/notify"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.Log, "worker")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logg)
	stop()
	if err != nil {
		logg.Fatal("worker stopped", zap.Error(err))
	}
	logg.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logg *zap.Logger) error {
	subscriber, closeSubscriber, err := bootstrap.NewSubscriber(cfg, logg)
	if err != nil {
		return fmt.Errorf("connect events broker: %w", err)
	}
	defer closeSubscriber()

	notifier := notify.NewNotifier(logg)

	logg.Info("worker started", zap.String("broker", cfg.Events.Broker), zap.String("topic", cfg.Events.Topic))
	if err := subscriber.Consume(ctx, notifier.Handle); err != nil {
		return fmt.Errorf("consume %s: %w", cfg.Events.Topic, err)
	}
	return nil
}
