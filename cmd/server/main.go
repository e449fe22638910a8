// Package main runs the campus hub HTTP server with WebSocket push and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/campus-hub/backend/config"
	"github.com/campus-hub/backend/internal/auth"
	"github.com/campus-hub/backend/internal/clubs"
	"github.com/campus-hub/backend/internal/events"
	"github.com/campus-hub/backend/internal/identity"
	"github.com/campus-hub/backend/internal/middleware"
	"github.com/campus-hub/backend/internal/models"
	"github.com/campus-hub/backend/internal/realtime"
	"github.com/campus-hub/backend/internal/registrations"
	"github.com/campus-hub/backend/internal/session"
	"github.com/campus-hub/backend/internal/users"
	"github.com/campus-hub/backend/pkg/database"
	"github.com/campus-hub/backend/pkg/queue"
	"github.com/campus-hub/backend/pkg/redis"
	"github.com/campus-hub/backend/pkg/response"
	"github.com/campus-hub/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolConfig{
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	}, logger)
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

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpireHours)
	ssoProvider := identity.NewSSOProvider(cfg.Auth.SSOSecret, cfg.Auth.SSOIssuer)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	defer hub.Close()

	// Users (the directory: authoritative store for identity and roles)
	userRepo := users.NewRepository(pool)
	userHandler := users.NewHandler(userRepo, hub, logger)

	// Sessions (reconcilers keyed by session id, advisory Redis cache)
	sessionCache := session.NewRedisCache(rdb.Client, jwtService.TokenLifetime())
	sessionManager := session.NewManager(userRepo, sessionCache, logger)
	defer sessionManager.Dispose()
	authHandler := auth.NewHandler(ssoProvider, sessionManager, userRepo, jwtService, logger)

	// Clubs
	clubRepo := clubs.NewRepository(pool)
	clubHandler := clubs.NewHandler(clubRepo, s3Client, hub, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, s3Client, hub, logger)

	// Registrations (confirmation emails go through the Redis queue)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	registrationRepo := registrations.NewRepository(pool)
	registrationHandler := registrations.NewHandler(registrationRepo, eventRepo, jobQueue, logger)

	wsValidate := func(token string) (uuid.UUID, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, err
		}
		return claims.UserID, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public): SSO session exchange and local bootstrap login
	router.POST("/auth/session", authHandler.CreateSession)
	router.POST("/auth/login", authHandler.Login)
	router.DELETE("/auth/session", authHandler.DeleteSession)

	// Public catalog (browsable without a session)
	router.GET("/clubs", clubHandler.List)
	router.GET("/clubs/:id", clubHandler.GetByID)
	router.GET("/events", eventHandler.List)
	router.GET("/events/:id", eventHandler.GetByID)

	// Protected API (session token required; user loaded fresh per request)
	api := router.Group("")
	api.Use(middleware.Auth(jwtService, userRepo))
	{
		api.GET("/auth/session", authHandler.GetSession)

		// Users (admin only)
		api.GET("/users", middleware.RequireRole(models.RoleAdmin), userHandler.List)
		api.PATCH("/users/:id/role", middleware.RequireRole(models.RoleAdmin), userHandler.UpdateRole)

		// Clubs (mutations re-checked against the authorization gate in handlers)
		api.POST("/clubs", clubHandler.Create)
		api.PATCH("/clubs/:id", clubHandler.Update)
		api.DELETE("/clubs/:id", clubHandler.Delete)
		api.POST("/clubs/:id/image", clubHandler.UploadImage)

		// Events
		api.POST("/events", eventHandler.Create)
		api.PATCH("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", eventHandler.Delete)
		api.POST("/events/:id/image", eventHandler.UploadImage)

		// Registrations
		api.POST("/events/:id/registrations", registrationHandler.Register)
		api.DELETE("/events/:id/registrations", registrationHandler.Unregister)
		api.GET("/events/:id/registrants", registrationHandler.ListRegistrants)
		api.GET("/me/registrations", registrationHandler.ListMine)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, wsValidate))

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
