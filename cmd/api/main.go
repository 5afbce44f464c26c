package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	_ "github.com/noah-isme/discipulus-api/api/swagger"
	"github.com/noah-isme/discipulus-api/internal/app"
	"github.com/noah-isme/discipulus-api/pkg/config"
	"github.com/noah-isme/discipulus-api/pkg/logger"
)

// @title Discipulus API
// @version 1.0.0
// @description Tutoring marketplace: teacher catalog, booking wizard, chat, schedule and teacher dashboard.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to build application", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		logr.Error("server stopped with error", zap.Error(err))
		return
	}
	logr.Info("server stopped")
}
