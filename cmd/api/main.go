package main

import (
	"context"
	"log"
	"net/http"

	"kotoba-server/config"
	"kotoba-server/internal/handler"
	"kotoba-server/internal/metrics"
	"kotoba-server/internal/middleware"
	"kotoba-server/internal/realtime"
	kotoba_redis "kotoba-server/internal/redis"
	"kotoba-server/internal/repository"
	"kotoba-server/internal/services"
	"kotoba-server/pkg/database"
	"kotoba-server/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		logMode = logger.ProductionMode
		gin.SetMode(gin.ReleaseMode)
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)
	defer l.Logger.Sync()

	ctx := context.Background()

	if err := database.Migrate(cfg); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisClient := kotoba_redis.NewClient(cfg)
	limiter := kotoba_redis.NewRateLimiter(redisClient, kotoba_redis.DefaultRateLimitConfig())

	userRepo := repository.NewUserRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry, l)

	authService := services.NewAuthService(userRepo, cfg)
	chatService := services.NewChatService(chatRepo, userRepo, hub, l)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, hub, l)

	wsHandler := realtime.NewHandler(authService, chatService, notificationService, hub, l)
	authHandler := handler.NewAuthHandler(authService, notificationService, l)
	chatHandler := handler.NewChatHandler(chatService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	userHandler := handler.NewUserHandler(userRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(l))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws", wsHandler.Connect)

	auth := r.Group("/v1/auth")
	auth.Use(middleware.AuthRateLimitMiddleware(limiter, l))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	authed := r.Group("/v1")
	authed.Use(middleware.AuthMiddleware(authService))
	{
		authed.GET("/users", userHandler.List)

		authed.GET("/chats/recent", chatHandler.RecentChats)
		authed.GET("/chats/history/:receiverId", chatHandler.History)
		authed.POST("/chats/send",
			middleware.MessageRateLimitMiddleware(limiter, l), chatHandler.Send)

		authed.GET("/notifications", notificationHandler.List)
		authed.POST("/notifications/read", notificationHandler.MarkRead)

		admin := authed.Group("/admin")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/notifications", notificationHandler.Dispatch)
		}
	}

	l.Infof("Starting server on port %s", cfg.AppPort)
	if err := r.Run(":" + cfg.AppPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
