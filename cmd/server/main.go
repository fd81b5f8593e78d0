// Package main runs the children's market registration HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/detske-trhy/backend/config"
	"github.com/detske-trhy/backend/internal/auth"
	"github.com/detske-trhy/backend/internal/emaillogs"
	"github.com/detske-trhy/backend/internal/mailer"
	"github.com/detske-trhy/backend/internal/middleware"
	"github.com/detske-trhy/backend/internal/registrations"
	"github.com/detske-trhy/backend/internal/uploads"
	"github.com/detske-trhy/backend/pkg/database"
	"github.com/detske-trhy/backend/pkg/redis"
	"github.com/detske-trhy/backend/pkg/response"
	"github.com/detske-trhy/backend/pkg/storage"
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

	// Redis only backs the intake rate limiter; run without it when not configured.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			PresentationsBucket:  cfg.AWS.PresentationsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	// Email is skipped entirely when Resend is not configured, never queued.
	var sender mailer.Sender
	if cfg.Email.APIKey != "" {
		sender = mailer.NewResendSender(cfg.Email.APIKey, cfg.Email.From())
	} else {
		logger.Warn("email disabled (RESEND_API_KEY not set)")
	}

	adminService := auth.NewAdminService(cfg.Admin.Password, cfg.Admin.PasswordHash, cfg.Admin.JWTSecret, cfg.Admin.TokenExpireHours)
	authHandler := auth.NewHandler(adminService, logger)

	emailLogRepo := emaillogs.NewRepository(pool)
	emailLogHandler := emaillogs.NewHandler(emailLogRepo)

	registrationRepo := registrations.NewRepository(pool)
	workflow := registrations.NewWorkflow(registrationRepo, emailLogRepo, sender, cfg.App.BaseURL, cfg.App.UploadDeadline, logger)
	registrationHandler := registrations.NewHandler(workflow, logger)
	uploadHandler := uploads.NewHandler(workflow, s3Client, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Admin login (public)
	router.POST("/admin/login", authHandler.Login)

	// Public intake (rate limited when Redis is available)
	var limiterClient *goredis.Client
	if rdb != nil {
		limiterClient = rdb.Client
	}
	router.POST("/api/registrations",
		middleware.RateLimit(limiterClient, cfg.App.RateLimitPerMinute, logger),
		registrationHandler.Create)

	// Public upload-token surface
	router.GET("/api/upload/:token", uploadHandler.Resolve)
	router.PUT("/api/upload/:token", uploadHandler.Redeem)
	router.POST("/api/upload/:token/sign", uploadHandler.SignUpload)
	router.POST("/api/upload/:token/video", uploadHandler.UploadVideo)

	// Privileged admin API
	admin := router.Group("/api")
	admin.Use(middleware.Admin(adminService))
	{
		admin.GET("/registrations", registrationHandler.List)
		admin.GET("/registrations/:id", registrationHandler.GetByID)
		admin.PUT("/registrations/:id", registrationHandler.ApplyAction)
		admin.DELETE("/registrations/:id", registrationHandler.Delete)
		admin.GET("/registrations/:id/emails", emailLogHandler.ListByRegistration)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

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
