package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Cyndi121404/Henhacks2026/config"
	"github.com/Cyndi121404/Henhacks2026/handlers"
	"github.com/Cyndi121404/Henhacks2026/ingest"
	"github.com/Cyndi121404/Henhacks2026/middleware"
	"github.com/Cyndi121404/Henhacks2026/services"
	"github.com/Cyndi121404/Henhacks2026/warehouse"
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger.WithField("service", "crosswalk-gateway").Logger
}

func main() {
	logger := newLogger()

	config.LoadEnv(logger)
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the warehouse; walks the account format candidates.
	provider := warehouse.NewProvider(cfg.Warehouse, logger)
	db, err := provider.Acquire(ctx)
	if err != nil {
		logger.WithError(err).Fatal("could not connect to warehouse")
	}
	defer provider.Close()

	// Startup must not proceed against a half-initialized schema.
	if err := warehouse.EnsureSchema(ctx, db, cfg.Warehouse); err != nil {
		logger.WithError(err).Fatal("schema setup failed")
	}
	logger.WithField("account", provider.Account()).Info("schema ready")

	cache := services.NewCacheService(cfg.Redis, logger)
	defer cache.Close()

	writer := services.NewEventWriter(provider, cache, logger)
	query := services.NewQueryService(provider, logger)
	store := services.NewSettingsStore(provider, logger)

	if cfg.MQTT.URL != "" {
		bridge := ingest.NewBridge(cfg.MQTT, writer, logger)
		if err := bridge.Start(ctx); err != nil {
			logger.WithError(err).Fatal("mqtt bridge failed to start")
		}
		defer bridge.Stop()
		logger.WithField("url", cfg.MQTT.URL).Info("mqtt ingest bridge running")
	}

	eventsHandler := handlers.NewEventsHandler(writer, logger)
	listingsHandler := handlers.NewListingsHandler(query, cache, logger)
	settingsHandler := handlers.NewSettingsHandler(store, logger)
	healthHandler := handlers.NewHealthHandler(provider, logger)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SetupCORS(cfg.CORS))
	router.Use(middleware.Metrics())

	api := router.Group("/api")
	api.POST("/snowflake", eventsHandler.Write)
	api.GET("/violations", listingsHandler.GetViolations)
	api.GET("/violations/:id/image", listingsHandler.GetViolationImage)
	api.GET("/crossings", listingsHandler.GetCrossings)
	api.GET("/settings", settingsHandler.Get)
	api.POST("/settings", settingsHandler.Put)
	api.GET("/health", healthHandler.Check)
	api.GET("/live", handlers.LiveFeed(cache, logger))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("gateway listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("forced shutdown")
	}
}
