package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zywang/bookmart-backend/config"
	"github.com/zywang/bookmart-backend/internal/app/controller"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/internal/app/service"
	"github.com/zywang/bookmart-backend/internal/db"
	"github.com/zywang/bookmart-backend/internal/middleware"
	"github.com/zywang/bookmart-backend/internal/router"
	"github.com/zywang/bookmart-backend/internal/scheduler"
	"github.com/zywang/bookmart-backend/internal/storage"
	"github.com/zywang/bookmart-backend/pkg/im"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"github.com/zywang/bookmart-backend/pkg/logistics/kuaidi100"
	"github.com/zywang/bookmart-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting BOOKMART Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the trending-pool cache; recommendations degrade to a
	// direct query when it is down, so startup continues without it.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Failed to connect to Redis, caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redis.Close()
	}

	// External clients
	logisticsClient, err := kuaidi100.NewClient(kuaidi100.Config{
		Customer: cfg.Logistics.Customer,
		Key:      cfg.Logistics.Key,
		BaseURL:  cfg.Logistics.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to create logistics client", err)
	}

	imClient, err := im.NewClient(im.Config{
		AppID:            cfg.IM.AppID,
		SecretKey:        cfg.IM.SecretKey,
		SigExpirySeconds: cfg.IM.SigExpirySeconds,
	})
	if err != nil {
		logger.Fatal("Failed to create IM client", err)
	}

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	schoolRepo := repository.NewSchoolRepository(db.GetDB())
	bookRepo := repository.NewBookRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())
	recommendRepo := repository.NewRecommendationRepository(db.GetDB())
	auditRepo := repository.NewAuditRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		schoolRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	userService := service.NewUserService(userRepo, bookRepo, orderRepo, schoolRepo)
	schoolService := service.NewSchoolService(schoolRepo)
	bookService := service.NewBookService(bookRepo)
	orderService := service.NewOrderService(orderRepo, bookRepo, schoolRepo)
	reviewService := service.NewReviewService(reviewRepo, orderRepo, userRepo)
	recommendService := service.NewRecommendService(recommendRepo, userRepo)
	adminService := service.NewAdminService(auditRepo, bookRepo)
	logisticsService := service.NewLogisticsService(logisticsClient, orderRepo)
	imService := service.NewIMService(imClient, userRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService)
	bookController := controller.NewBookController(bookService)
	schoolController := controller.NewSchoolController(schoolService)
	orderController := controller.NewOrderController(orderService)
	reviewController := controller.NewReviewController(reviewService)
	recommendController := controller.NewRecommendController(recommendService)
	adminController := controller.NewAdminController(adminService)
	logisticsController := controller.NewLogisticsController(logisticsService)
	imController := controller.NewIMController(imService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start trending pool refresh scheduler
	trendingScheduler := scheduler.NewTrendingScheduler(recommendService)
	if err := trendingScheduler.Start(); err != nil {
		logger.Error("Failed to start trending scheduler", err)
	}
	defer trendingScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		userController,
		bookController,
		schoolController,
		orderController,
		reviewController,
		recommendController,
		adminController,
		logisticsController,
		imController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
