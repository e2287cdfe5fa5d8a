package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"wardrobe/internal/app"
	"wardrobe/internal/config"
	"wardrobe/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.NewLogger(logger.Mode(cfg.LogMode), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.SetGlobalLogger(appLog)
	defer func() { _ = appLog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal(ctx, "failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			appLog.Error(context.Background(), "failed to close application", zap.Error(err))
		}
	}()

	if err := application.Run(ctx); err != nil {
		appLog.Error(ctx, "server stopped with error", zap.Error(err))
		return
	}
	appLog.Info(context.Background(), "server gracefully stopped")
}
