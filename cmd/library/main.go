// cmd/library/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"citylibrary/internal/catalog"
	"citylibrary/internal/config"
	"citylibrary/internal/console"
	"citylibrary/internal/store"
	"citylibrary/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, telemetry.Endpoints{
		Traces:  cfg.OTLPTracesEndpoint,
		Metrics: cfg.OTLPMetricsEndpoint,
	})
	if err != nil {
		log.Fatalf("Failed to set up telemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	fs := store.NewFileStore(cfg.BookFile, cfg.MemberFile)
	svc := catalog.NewService(fs, logger)
	handler := console.NewHandler(svc, os.Stdin, os.Stdout, logger)
	if err := svc.Load(ctx); err != nil {
		handler.ReportLoad(err)
	}

	if err := handler.Run(ctx); err != nil {
		logger.Error("menu loop stopped", "error", err)
	}
}
