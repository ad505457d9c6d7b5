package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"microloan/internal/adapters/checkout"
	"microloan/internal/adapters/http/middleware"
	"microloan/internal/adapters/http/routes"
	"microloan/internal/adapters/persistence/models"
	"microloan/internal/config"
	"microloan/internal/core/services"
	"microloan/internal/pkg/logger"
	"microloan/internal/pkg/ratestore"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// @title Microloan API
// @version 1.0
// @description Loan marketplace: catalogue, applications, fee payments and dashboards.

// @BasePath /
// @schemes https http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("prod")
		logger.GetLogger().Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Init(cfg.AppMode)
	defer logger.Sync()
	log := logger.GetLogger()
	ctx := context.Background()

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			log.Warn("error closing database", zap.Error(err))
		}
	}()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("failed to auto migrate", zap.Error(err))
	}
	log.Info("database migration completed")

	// Seed bootstrap admin
	if err := config.NewSeeder(db, cfg.Seed).Run(ctx); err != nil {
		log.Warn("failed to seed admin user", zap.Error(err))
	}

	// Rate-limit storage (optional)
	var rateStorage fiber.Storage
	if cfg.Redis.URL != "" {
		store, err := ratestore.New(cfg.Redis.URL, cfg.Redis.Password, "")
		if err != nil {
			log.Warn("redis unavailable, rate limits kept in memory", zap.Error(err))
		} else {
			defer store.Close()
			rateStorage = store
		}
	}

	// Daily dashboard snapshot
	cronService, err := services.NewCronService(services.NewDashboardService(db), cfg.Cron.DailyReportSpec)
	if err != nil {
		log.Fatal("failed to schedule cron jobs", zap.Error(err))
	}
	cronService.Start()
	defer cronService.Stop()

	if cfg.Stripe.SecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY is not set; checkout calls will fail")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Microloan API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	metrics := middleware.NewMetrics()

	// Setup middlewares
	middleware.Setup(app, cfg, rateStorage, metrics)

	// Setup routes
	routes.Setup(app, routes.Dependencies{
		DB:          db,
		Config:      cfg,
		Checkout:    checkout.NewStripeProvider(cfg.Stripe.SecretKey),
		RateStorage: rateStorage,
		Metrics:     metrics,
	})

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.GetLogger().Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.GetLogger().Error("error during shutdown", zap.Error(err))
	}
	logger.GetLogger().Info("server stopped gracefully")
}
