package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/invest-earning/event-engine/internal/api"
	"github.com/invest-earning/event-engine/internal/api/handlers"
	"github.com/invest-earning/event-engine/internal/broker"
	"github.com/invest-earning/event-engine/internal/config"
	"github.com/invest-earning/event-engine/internal/database"
	"github.com/invest-earning/event-engine/internal/heartbeat"
	"github.com/invest-earning/event-engine/internal/processor"
	"github.com/invest-earning/event-engine/internal/repository"
	"github.com/invest-earning/event-engine/internal/router"
	"github.com/invest-earning/event-engine/internal/service"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Open the wallet store (read-only source of truth)
	walletDB, err := database.Open(cfg.Database.WalletPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open wallet store")
	}
	defer walletDB.Close()

	// Open and migrate the analytic store
	analyticDB, err := database.Open(cfg.Database.AnalyticPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open analytic store")
	}
	defer analyticDB.Close()

	if err := database.MigrateAnalytic(analyticDB); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate analytic store")
	}

	log.Info().
		Str("wallet", cfg.Database.WalletPath).
		Str("analytic", cfg.Database.AnalyticPath).
		Msg("Connected to stores")

	// Connect to the broker and declare both queues
	b, err := broker.Connect(cfg.Broker.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to broker")
	}
	defer b.Close()

	for _, queue := range []string{cfg.Broker.NotificationQueue, cfg.Broker.YoCQueue} {
		if err := b.DeclareQueue(queue); err != nil {
			log.Fatal().Err(err).Str("queue", queue).Msg("Failed to declare queue")
		}
	}

	// Create repositories and services
	walletRepo := repository.NewWalletRepository(walletDB)
	yieldRepo := repository.NewYieldRepository(analyticDB)
	positionRepo := repository.NewPositionRepository(walletDB)

	yieldService := service.NewYieldService(
		analyticDB,
		walletRepo,
		yieldRepo,
		positionRepo,
		cfg.Processor.Temperature,
		log,
	)

	notificationRouter := router.NewRouter(b, cfg.Broker.YoCQueue, log)
	yocProcessor := processor.NewProcessor(yieldService, log)

	// Start consuming both queues
	notifications, err := b.Consume(cfg.Broker.NotificationQueue, "notification-router")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to consume notification queue")
	}
	events, err := b.Consume(cfg.Broker.YoCQueue, "yoc-processor")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to consume event queue")
	}

	// Create the ops HTTP server
	systemHandler := handlers.NewSystemHandler(walletDB, analyticDB, b, walletRepo, yieldRepo)
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(systemHandler, cfg, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the heartbeat that triggers reconciliation sweeps
	hb := heartbeat.New(b, cfg.Broker.NotificationQueue, log)
	if err := hb.Start(cfg.Heartbeat.Schedule); err != nil {
		log.Fatal().Err(err).Msg("Failed to start heartbeat")
	}

	var g errgroup.Group
	g.Go(func() error {
		notificationRouter.Run(notifications)
		return nil
	})
	g.Go(func() error {
		yocProcessor.Run(events)
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting ops server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Stopping the heartbeat first prevents new sweep triggers; closing the
	// broker connection ends both consumer loops.
	hb.Stop()
	if err := b.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close broker connection")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Ops server forced to shutdown")
	}

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Engine exited with error")
	}

	log.Info().Msg("Engine exited")
}
