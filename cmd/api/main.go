package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jwalitptl/salon-api/internal/app"
	"github.com/jwalitptl/salon-api/internal/config"
	"github.com/jwalitptl/salon-api/internal/handler/health"
	"github.com/jwalitptl/salon-api/internal/handler/prometheus"
	"github.com/jwalitptl/salon-api/internal/middleware"
	"github.com/jwalitptl/salon-api/internal/router"
	"github.com/jwalitptl/salon-api/pkg/auth"
)

const tokenIssuer = "salon-api"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, closeStore, err := app.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal(err, "failed to connect to database", "driver", cfg.Database.Driver)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error(err, "failed to close database")
		}
	}()

	registry, m := app.NewMetrics()

	// Initialize services
	services, err := app.NewServices(store, cfg, logger, m)
	if err != nil {
		logger.Fatal(err, "failed to build services")
	}

	if cfg.JWT.Secret == "" {
		logger.Warn("jwt.secret is empty; bearer tokens cannot be verified")
	}

	// Setup router
	r, err := router.NewRouter(
		auth.NewJWTService(cfg.JWT.Secret, tokenIssuer),
		health.NewHandler(store.Health),
		prometheus.New(registry, m),
		services.Routes(),
		router.RouterConfig{
			RateLimit:  cfg.Server.RateLimit,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
	)
	if err != nil {
		logger.Fatal(err, "failed to create router")
	}
	r.Setup()

	// Publish outbox events in-process when Redis is available
	if cfg.Outbox.Enabled && cfg.Redis.Enabled {
		broker, err := app.NewBroker(cfg.Redis, logger)
		if err != nil {
			logger.Fatal(err, "failed to connect to Redis")
		}
		defer broker.Close()

		go app.NewOutboxProcessor(store, broker, cfg, logger, m).Start(ctx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "server forced to shutdown")
		return
	}

	logger.Info("server exited properly")
}
