package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/stokku/inventory-service/config"
	"github.com/stokku/inventory-service/internal/alert"
	"github.com/stokku/inventory-service/internal/auth"
	"github.com/stokku/inventory-service/internal/forecast"
	forecastH "github.com/stokku/inventory-service/internal/forecast/handler"
	invH "github.com/stokku/inventory-service/internal/inventory/handler"
	invRepoPkg "github.com/stokku/inventory-service/internal/inventory/repository"
	invUCPkg "github.com/stokku/inventory-service/internal/inventory/usecase"
	"github.com/stokku/inventory-service/internal/notifier"
	"github.com/stokku/inventory-service/internal/scheduler"
	"github.com/stokku/inventory-service/internal/server/router"
	storeRepoPkg "github.com/stokku/inventory-service/internal/store/repository"
	"github.com/stokku/inventory-service/internal/transfer"
	trfH "github.com/stokku/inventory-service/internal/transfer/handler"
	trfRepoPkg "github.com/stokku/inventory-service/internal/transfer/repository"
	trfUCPkg "github.com/stokku/inventory-service/internal/transfer/usecase"
	"github.com/stokku/inventory-service/pkg/broker"
	"github.com/stokku/inventory-service/pkg/cache"
	"github.com/stokku/inventory-service/pkg/logger"
	"github.com/stokku/inventory-service/pkg/postgres"
)

func main() {
	// 1. Load configuration
	_ = godotenv.Load() // .env is optional
	cfg := config.LoadEnv()

	// 2. Initialize logger
	appLogger := logger.Must(logger.New(cfg.Logger))
	defer appLogger.Sync()

	// 3. Connect to PostgreSQL
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("connected to PostgreSQL", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize repositories
	invRepo := invRepoPkg.NewPGRepository(db)
	trfRepo := trfRepoPkg.NewPGRepository(db)
	storeRepo := storeRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Warn("could not connect to redis, forecast caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLogger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 6. Initialize notification channels
	producer := broker.NewProducer(cfg.Kafka)
	defer producer.Close()
	appLogger.Info("kafka producer ready",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.AlertTopic))

	notifiers := []notifier.Notifier{notifier.NewKafkaNotifier(producer)}
	if cfg.Webhook.URL != "" {
		notifiers = append(notifiers, notifier.NewWebhookNotifier(cfg.Webhook))
		appLogger.Info("webhook notifier enabled", zap.String("url", cfg.Webhook.URL))
	}

	// 7. Initialize engines and use cases
	alertEngine := alert.NewEngine(invRepo, storeRepo, notifiers, logger.Named(appLogger, "alerts"))
	forecastEngine := forecast.NewEngine(invRepo, invRepo, redisClient, logger.Named(appLogger, "forecast"))
	authorizer := auth.NewAuthorizer(storeRepo)

	invUC := invUCPkg.NewInventoryUseCase(invRepo, alertEngine, logger.Named(appLogger, "inventory"))
	trfUC := trfUCPkg.NewTransferUseCase(
		trfRepo, invRepo, storeRepo, authorizer, alertEngine,
		transfer.DefaultApprovalPolicy, logger.Named(appLogger, "transfer"))

	// 8. Initialize handlers and router
	trfHandler := trfH.NewTransferHandler(trfUC, logger.Named(appLogger, "http"))
	invHandler := invH.NewInventoryHandler(invUC, logger.Named(appLogger, "http"))
	fcHandler := forecastH.NewForecastHandler(forecastEngine, logger.Named(appLogger, "http"))

	engine := router.New(cfg, trfHandler, invHandler, fcHandler, logger.Named(appLogger, "http"))

	// 9. Start scheduler
	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(cfg.Scheduler, alertEngine, forecastEngine, invRepo, redisClient,
			logger.Named(appLogger, "scheduler"))
		sched.Start()
		defer sched.Stop()
	}

	// 10. Start HTTP server with graceful shutdown
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		appLogger.Info("starting HTTP server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("server stopped")
}
