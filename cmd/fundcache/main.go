package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/EuroPitch/Trading-Software/cmd/fundcache/internal/exporter"
	"github.com/EuroPitch/Trading-Software/pkg/config"
)

func main() {
	cronSpec := flag.String("cron", "", "cron schedule for repeated exports (e.g. \"0 * * * *\"); empty runs once")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.App.Env == "local" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	if cfg.Database.DSN == "" {
		logger.Fatal("database.dsn is required for the exporter")
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}

	exp := exporter.New(db, cfg.Cache.File, logger)
	if err := exp.Migrate(); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *cronSpec == "" {
		if err := exp.Run(ctx); err != nil {
			logger.Fatal("Export failed", zap.Error(err))
		}
		logger.Info("Export complete")
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*cronSpec, func() {
		if err := exp.Run(ctx); err != nil {
			logger.Error("Scheduled export failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("Invalid cron schedule", zap.String("cron", *cronSpec), zap.Error(err))
	}
	c.Start()
	logger.Info("Exporter scheduled", zap.String("cron", *cronSpec))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cancel()
	<-c.Stop().Done()
	logger.Info("Shutdown Complete")
}
