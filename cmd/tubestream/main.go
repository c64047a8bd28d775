package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manmohanbh/tubestream-pwa-v2/internal/app"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/cache"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/cleanup"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/config"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/database"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/dispatcher"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/gemini"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/resolver"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup structured logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting TubeStream", "version", "1.0.0")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	// Optional Redis metadata cache; the resolver works without it
	metadataCache := cache.New(cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
	if metadataCache != nil {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metadataCache.Ping(pingCtx); err != nil {
			slog.Warn("Redis unreachable - metadata caching disabled", "addr", cfg.RedisAddr, "error", err)
			metadataCache = nil
		} else {
			slog.Info("Metadata cache connected", "addr", cfg.RedisAddr)
			defer metadataCache.Close()
		}
		pingCancel()
	}

	// Initialize Gemini client
	generator := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)

	// Validate API key (warn but don't exit if validation fails during development)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := generator.CheckAPIKey(ctx); err != nil {
		slog.Warn("Gemini API key validation failed - continuing anyway", "error", err)
		slog.Warn("Please ensure your Gemini API key is valid for full functionality")
	} else {
		slog.Info("Gemini API key validated successfully")
	}
	cancel()

	// Wire the analyze/dispatch pipeline
	application, err := app.New(
		resolver.New(generator, metadataCache),
		dispatcher.New(cfg.DownloadsPath),
		db,
		cfg.BackendURL,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	server := web.NewServer(application, cfg.ServerPort, cfg.DownloadsPath)

	return runServer(server, cfg.DownloadsPath)
}

func runServer(server *web.Server, downloadsPath string) error {
	// Create main context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start downloads pruning routine
	go cleanup.NewService(downloadsPath).Run(ctx)

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	}

	// Cancel context to stop the cleanup routine
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// setupLogging configures structured logging based on the log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	logger := slog.New(handler)
	slog.SetDefault(logger)
}
