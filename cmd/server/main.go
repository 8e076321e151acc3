package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/EuroPitch/Trading-Software/cmd/server/internal/fundamentals"
	"github.com/EuroPitch/Trading-Software/cmd/server/internal/gateway"
	"github.com/EuroPitch/Trading-Software/cmd/server/internal/hub"
	"github.com/EuroPitch/Trading-Software/cmd/server/internal/quote"
	"github.com/EuroPitch/Trading-Software/cmd/server/internal/stream"
	"github.com/EuroPitch/Trading-Software/cmd/server/internal/universe"
	"github.com/EuroPitch/Trading-Software/pkg/config"
)

func main() {
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

	uni, err := universe.Load(cfg.Universe.File)
	if err != nil {
		logger.Fatal("Failed to load universe", zap.Error(err))
	}
	symbols := uni.Symbols()
	logger.Info("Universe loaded", zap.Int("symbols", len(symbols)))

	store := fundamentals.NewFileStore(cfg.Cache.File)
	fetcher := fundamentals.NewYahooFetcher()
	refresher := fundamentals.NewRefresher(fetcher, store, symbols, cfg.Refresh, logger)

	wsHub := hub.NewHub(logger)

	composer := quote.NewComposer(refresher, nil, uni)
	ingestor := stream.NewIngestor(stream.GorillaDialer{}, cfg.Stream, symbols, composer, wsHub, logger)
	composer.SetLive(ingestor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go refresher.Run(ctx)
	go ingestor.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.App.Port,
		Handler: gateway.NewServer(uni, composer, ingestor, wsHub, logger).Routes(),
	}

	go func() {
		logger.Info("Server Started", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("HTTP Error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cancel()
	srv.Shutdown(context.Background())
	logger.Info("Shutdown Complete")
}
