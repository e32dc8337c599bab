package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/salon-api/internal/app"
	"github.com/jwalitptl/salon-api/internal/config"
	"github.com/jwalitptl/salon-api/internal/handler/health"
	"github.com/jwalitptl/salon-api/internal/handler/prometheus"
	"github.com/jwalitptl/salon-api/internal/middleware"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/worker"
)

func main() {
	addr := flag.String("addr", ":8081", "listen address for health and metrics")
	flag.Parse()

	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log)
	logger = logger.WithFields(map[string]interface{}{"worker_id": workerID()})

	if !cfg.Redis.Enabled {
		logger.Fatal(errors.New("redis is disabled"), "the worker needs redis.enabled to publish events")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal(err, "failed to connect to database", "driver", cfg.Database.Driver)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error(err, "failed to close database")
		}
	}()

	broker, err := app.NewBroker(cfg.Redis, logger)
	if err != nil {
		logger.Fatal(err, "failed to create Redis broker")
	}
	defer broker.Close()

	registry, m := app.NewMetrics()

	processor := app.NewOutboxProcessor(store, broker, cfg, logger, m)
	cleanup := worker.NewOutboxCleanupWorker(store.Outbox, cfg.Outbox.Retention, cfg.Outbox.CleanupEvery, logger, m)

	// Health and metrics endpoints
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.Recovery())
	health.NewHandler(readiness{store.Health, broker}).RegisterRoutes(engine.Group(""))
	engine.GET("/metrics", prometheus.New(registry, m).Handler())

	srv := &http.Server{Addr: *addr, Handler: engine}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "health check server failed")
			stop()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()

	logger.Info("worker started", "addr", *addr)
	<-ctx.Done()
	logger.Info("shutting down...")

	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "health server forced to shutdown")
	}
}

// readiness reports ready only when every dependency answers.
type readiness []repository.Pinger

func (r readiness) Ping(ctx context.Context) error {
	for _, p := range r {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func workerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}
