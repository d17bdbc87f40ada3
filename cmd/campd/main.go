package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"camp-registration-backend/config"
	"camp-registration-backend/internal/admission"
	"camp-registration-backend/internal/api"
	"camp-registration-backend/internal/db"
	"camp-registration-backend/internal/intake"
	"camp-registration-backend/internal/logger"
	"camp-registration-backend/internal/notification"
	"camp-registration-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	zl, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zl.Info("configuration loaded", zap.String("path", configPath))

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Without a database the server still answers, refusing submissions.
	var appStore store.Store
	if cfg.Database.DSN == "" {
		zl.Error("database.dsn is not set; submissions will be refused")
	} else {
		gormDB, err := db.Init(&cfg.Database)
		if err != nil {
			zl.Fatal("failed to initialize database", zap.Error(err))
		}
		appStore = store.NewGormStore(gormDB)
		zl.Info("database initialized", zap.String("driver", cfg.Database.Driver))
	}

	notifier, err := notification.New(ctx, &cfg.Notify, zl)
	if err != nil {
		zl.Fatal("failed to initialize notifications", zap.Error(err))
	}
	pool := notification.NewWorkerPool(cfg.Notify.Workers, cfg.Notify.QueueSize, notifier, cfg.Notify.Timeout(), zl)
	pool.Start(ctx)

	validator := intake.NewValidator(cfg.Registration.Origins, cfg.Registration.Courses)
	svc := admission.NewService(appStore, validator, pool, cfg.Notify.Timeout(), zl)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewHandler(svc, appStore, cfg.Registration.Origins), &cfg.Server, zl)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		zl.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	zl.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("HTTP server Shutdown", zap.Error(err))
	}

	// Drain queued confirmations before exiting.
	pool.Close()

	zl.Info("server gracefully stopped")
}
