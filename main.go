package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ratesync/internal/api"
	"ratesync/internal/browser"
	"ratesync/internal/config"
	"ratesync/internal/coordinator"
	"ratesync/internal/extract"
	"ratesync/internal/scheduler"
	"ratesync/internal/sheets"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received interrupt signal, shutting down")
		cancel()
	}()

	renderer := browser.NewRodRenderer(browser.RodConfig{
		RemoteURL:   cfg.BrowserURL,
		Headless:    cfg.Headless,
		NavTimeout:  cfg.NavTimeout(),
		SettleDelay: cfg.SettleDelay(),
		Logger:      logger,
	})

	publisher := sheets.NewPublisher(sheets.Config{
		SpreadsheetID: cfg.SheetID,
		Title:         cfg.SheetTitle,
		Credentials:   cfg.ServiceAccountBase64,
		BaseURL:       cfg.SheetsBaseURL,
		Logger:        logger,
	})

	coord := coordinator.New(
		extract.New(renderer, cfg.SourceURL, logger),
		publisher,
		cfg.CacheTTL(),
		logger,
	)

	sched, err := scheduler.New(ctx, cfg.CronSchedule, coord, logger)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: api.New(coord, api.Settings{
			SourceURL:  cfg.SourceURL,
			Schedule:   cfg.CronSchedule,
			CacheTTLMS: cfg.CacheTTLMS,
			SheetTitle: cfg.SheetTitle,
		}, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Publish once at startup rather than waiting for the first tick
	go sched.Tick(ctx)
	sched.Start()

	go func() {
		logger.Info("listening", "addr", srv.Addr, "source", cfg.SourceURL, "schedule", cfg.CronSchedule)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	sched.Stop(shutdownCtx)
	logger.Info("stopped")
}
