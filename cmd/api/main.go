package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cloudmap-backend/infrastructure/config"
	"cloudmap-backend/infrastructure/di"
	"cloudmap-backend/interfaces/http/server"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(os.Getenv("CLOUDMAP_CONFIG"), nil)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize dependency container
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	watcher, err := container.WatchConfig()
	if err != nil {
		container.Logger.Warn("Configuration hot reloading disabled", zap.Error(err))
	} else if watcher != nil {
		defer watcher.Stop()
	}

	container.Logger.Info("Configuration loaded",
		zap.String("environment", string(cfg.Environment)),
		zap.String("store", cfg.Store.Backend),
		zap.String("provider", cfg.Model.Provider),
	)

	if err := server.Run(ctx, cfg.Server.Address, container.Handler, container.Logger); err != nil {
		container.Logger.Error("Server error", zap.Error(err))
	}

	// Clean up resources
	if err := container.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}
}
