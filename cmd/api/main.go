package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/cleanoyo/wasteup-api/api/swagger"
	"github.com/cleanoyo/wasteup-api/internal/handler"
	"github.com/cleanoyo/wasteup-api/internal/middleware"
	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/repository"
	"github.com/cleanoyo/wasteup-api/internal/service"
	"github.com/cleanoyo/wasteup-api/internal/textgen"
	"github.com/cleanoyo/wasteup-api/pkg/cache"
	"github.com/cleanoyo/wasteup-api/pkg/config"
	"github.com/cleanoyo/wasteup-api/pkg/database"
	"github.com/cleanoyo/wasteup-api/pkg/logger"
	corsmiddleware "github.com/cleanoyo/wasteup-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cleanoyo/wasteup-api/pkg/middleware/requestid"
)

// @title Waste Up API
// @version 0.1.0
// @description Pickup coordination portal for the Oyo pilot
// @BasePath /api/v1
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The portal degrades to uncached reads without Redis.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	pickupRepo := repository.NewPickupRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	validate := validator.New()

	// Services
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Tips.CacheTTL, logr)
	}

	generator := textgen.NewGeminiClient(cfg.TextGen, logr)

	notificationSvc := service.NewNotificationService(notificationRepo, generator, logr, service.NotificationConfig{
		Workers:       cfg.Notifications.Workers,
		BufferSize:    cfg.Notifications.BufferSize,
		SubscriberBuf: cfg.Notifications.SubscriberBuf,
	})
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	authSvc := service.NewAuthService(userRepo, activityRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, activityRepo, validate, logr)
	pickupSvc := service.NewPickupService(pickupRepo, userRepo, notificationSvc, validate, logr)
	activitySvc := service.NewActivityService(activityRepo)
	tipsSvc := service.NewTipsService(generator, cacheSvc, cfg.Tips.CacheTTL, logr)
	routeSvc := service.NewRouteService(pickupRepo, generator, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Pickups:  pickupRepo,
		Users:    userRepo,
		Activity: activityRepo,
		Cache:    cacheSvc,
		Logger:   logr,
		CacheTTL: cfg.Dashboard.CacheTTL,
	})
	exportSvc := service.NewExportService(pickupRepo)

	if cfg.Seed.Enabled {
		if err := seedDatabase(ctx, userRepo, activityRepo, logr); err != nil {
			logr.Sugar().Warnw("seeding failed", "error", err)
		}
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	pickupHandler := handler.NewPickupHandler(pickupSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	tipsHandler := handler.NewTipsHandler(tipsSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, routeSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/operators", userHandler.Operators)

		users := protected.Group("/users")
		{
			users.GET("", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
			users.GET("/:id", middleware.RBAC("SELF", string(models.RoleAdmin)), userHandler.Get)
			users.PUT("/:id", middleware.RBAC("SELF", string(models.RoleAdmin)), userHandler.UpdateProfile)
			users.PATCH("/:id/availability", middleware.RequireRoles(models.RolePSPOperator, models.RoleAdmin), userHandler.SetAvailability)
		}

		requests := protected.Group("/requests")
		{
			requests.POST("", pickupHandler.Create)
			requests.GET("", pickupHandler.List)
			requests.GET("/:id", pickupHandler.Get)
			requests.PATCH("/:id/status", pickupHandler.UpdateStatus)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("", notificationHandler.Clear)
		}

		protected.GET("/activity", activityHandler.List)
		protected.GET("/tips", tipsHandler.Tip)
		protected.GET("/routes/advice", middleware.RequireRoles(models.RolePSPOperator, models.RoleAdmin), dashboardHandler.RouteAdvice)
		protected.GET("/dashboard/overview", middleware.RequireRoles(models.RoleAdmin), dashboardHandler.Overview)
		protected.GET("/exports/pickups", middleware.RequireRoles(models.RoleAdmin), exportHandler.Pickups)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("shutdown incomplete", "error", err)
	}
}
