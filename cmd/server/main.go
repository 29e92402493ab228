// Package main runs the promo platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/promohub/backend/config"
	"github.com/promohub/backend/internal/activation"
	"github.com/promohub/backend/internal/auth"
	"github.com/promohub/backend/internal/feed"
	"github.com/promohub/backend/internal/interactions"
	"github.com/promohub/backend/internal/middleware"
	"github.com/promohub/backend/internal/profile"
	"github.com/promohub/backend/internal/promos"
	"github.com/promohub/backend/internal/worker"
	"github.com/promohub/backend/pkg/database"
	"github.com/promohub/backend/pkg/redis"
	"github.com/promohub/backend/pkg/response"
	"github.com/promohub/backend/pkg/storage"
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

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ImagesBucket:         cfg.AWS.ImagesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	tokens := auth.NewTokenService(cfg.JWT.Secret)
	sessionStore := auth.NewRedisSessionStore(rdb.Client)
	sessions := auth.NewSessionRegistry(tokens, sessionStore, time.Duration(cfg.JWT.SessionTTLHours)*time.Hour)

	// Auth and profile
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, sessions, logger)
	profileHandler := profile.NewHandler(authRepo, logger)

	// Promo catalog (business side)
	promoRepo := promos.NewRepository(pool)
	promoHandler := promos.NewHandler(promoRepo, s3Client, logger)

	// Interactions (likes and comments)
	interactionRepo := interactions.NewRepository(pool)
	ledger := interactions.NewLedger(interactionRepo)
	interactionHandler := interactions.NewHandler(ledger, authRepo, logger)

	// Feed (user side)
	feedHandler := feed.NewHandler(promoRepo, interactionRepo, authRepo, logger)

	// Activation
	antifraud := activation.NewAntifraudClient(cfg.Antifraud.Address, time.Duration(cfg.Antifraud.TimeoutSeconds)*time.Second, logger)
	verdictCache := activation.NewRedisVerdictCache(rdb)
	activationRepo := activation.NewRepository(pool, promoRepo, authRepo)
	gate := activation.NewGate(activationRepo, antifraud, verdictCache, logger)
	activationHandler := activation.NewHandler(gate, logger)

	metrics := middleware.NewHTTPMetrics()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(metrics.Collect())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/ping", func(c *gin.Context) { response.OK(c, gin.H{"success": true}) })

	business := api.Group("/business")
	{
		business.POST("/auth/sign-up", authHandler.CompanySignUp)
		business.POST("/auth/sign-in", authHandler.CompanySignIn)

		protected := business.Group("", middleware.Authenticate(sessions, auth.TokenKindCompany))
		protected.POST("/promo", promoHandler.Create)
		protected.GET("/promo", promoHandler.List)
		protected.GET("/promo/:id", promoHandler.Get)
		protected.PATCH("/promo/:id", promoHandler.Patch)
		protected.GET("/promo/:id/stat", promoHandler.Stat)
		protected.POST("/promo/:id/image", promoHandler.UploadImage)
	}

	user := api.Group("/user")
	{
		user.POST("/auth/sign-up", authHandler.UserSignUp)
		user.POST("/auth/sign-in", authHandler.UserSignIn)

		protected := user.Group("", middleware.Authenticate(sessions, auth.TokenKindUser))
		protected.GET("/profile", profileHandler.Get)
		protected.PATCH("/profile", profileHandler.Patch)
		protected.GET("/feed", feedHandler.Feed)
		protected.GET("/promo/:id", feedHandler.GetPromo)
		protected.POST("/promo/:id/like", interactionHandler.Like)
		protected.DELETE("/promo/:id/like", interactionHandler.Unlike)
		protected.POST("/promo/:id/comments", interactionHandler.AddComment)
		protected.GET("/promo/:id/comments", interactionHandler.ListComments)
		protected.GET("/promo/:id/comments/:comment_id", interactionHandler.GetComment)
		protected.PUT("/promo/:id/comments/:comment_id", interactionHandler.UpdateComment)
		protected.DELETE("/promo/:id/comments/:comment_id", interactionHandler.DeleteComment)
		protected.POST("/promo/:id/activate", activationHandler.Activate)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process active-flag sweep alongside the server; the standalone worker
	// binary covers deployments that split it out.
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	sweeper := worker.NewActiveSweeper(promoRepo, time.Duration(cfg.Worker.SweepIntervalMinutes)*time.Minute, logger)
	go sweeper.Run(sweepCtx)

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sweepCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
