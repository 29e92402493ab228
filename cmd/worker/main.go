// Package main runs the background sweep that keeps promo active flags in
// step with their activity windows.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/promohub/backend/config"
	"github.com/promohub/backend/internal/promos"
	"github.com/promohub/backend/internal/worker"
	"github.com/promohub/backend/pkg/database"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	promoRepo := promos.NewRepository(pool)
	sweeper := worker.NewActiveSweeper(promoRepo, time.Duration(cfg.Worker.SweepIntervalMinutes)*time.Minute, logger)

	sweepCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sweeper.Run(sweepCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
