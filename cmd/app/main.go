package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airreserve/api"
	"github.com/Domenick1991/airreserve/config"
	"github.com/Domenick1991/airreserve/internal/bootstrap"
	"github.com/Domenick1991/airreserve/internal/cache"
	"github.com/Domenick1991/airreserve/internal/logger"
	"github.com/Domenick1991/airreserve/internal/service/inventory"
	"github.com/Domenick1991/airreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
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

	logg, err := logger.New(cfg.Log, "app")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logg)
	stop()
	if err != nil {
		logg.Fatal("app stopped", zap.Error(err))
	}
}

// run wires storage, the event producer and the cache into the HTTP API and serves
// it until ctx is canceled. Everything it opens is closed before it returns.
func run(ctx context.Context, cfg *config.Config, logg *zap.Logger) error {
	storage, err := bootstrap.OpenStorage(ctx, cfg.Database, logg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer storage.Close()

	producer, closeProducer, err := bootstrap.NewProducer(ctx, cfg, logg)
	if err != nil {
		return fmt.Errorf("connect events broker: %w", err)
	}
	defer closeProducer()

	opts := []reservation.ReservationServiceOption{}
	var flightCache inventory.FlightCache
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Cache.FlightsTTL())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logg.Warn("redis is not reachable, reads fall back to the database", zap.Error(err))
		}
		flightCache = redisCache
		opts = append(opts, reservation.WithCache(redisCache))
	}
	if producer != nil {
		opts = append(opts, reservation.WithProducer(producer, cfg.Events.Topic))
	}

	reservationService := reservation.NewReservationService(storage.Tx, storage.Flights, storage.Bookings, logg, opts...)
	inventoryService := inventory.NewInventoryService(storage.Tx, storage.Flights, storage.Bookings, flightCache, logg)

	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(cfg.HTTP, reservationService, inventoryService, storage.Pinger, logg)

	return bootstrap.Run(ctx, cfg.HTTP, router, logg)
}
