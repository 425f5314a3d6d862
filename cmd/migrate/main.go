package main

import (
	"flag"
	"log"
	"os"

	"github.com/Domenick1991/airreserve/config"
	"github.com/Domenick1991/airreserve/internal/bootstrap"
	"github.com/Domenick1991/airreserve/internal/logger"
	"github.com/Domenick1991/airreserve/internal/migrations"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		log.Printf("usage: %s [up|down]", os.Args[0])
	}
	flag.Parse()

	direction := "up"
	if flag.NArg() > 0 {
		direction = flag.Arg(0)
	}
	step := migrations.Up
	switch direction {
	case "up":
	case "down":
		step = migrations.Down
	default:
		flag.Usage()
		os.Exit(2)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.Log, "migrate")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	if err := bootstrap.Migrate(cfg.Database, logg, step); err != nil {
		logg.Fatal("migrate "+direction, zap.Error(err))
	}
}
