package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/app"
	"github.com/jwalitptl/salon-api/internal/config"
	"github.com/jwalitptl/salon-api/internal/seed"
)

func main() {
	file := flag.String("file", "config/seed.yaml", "fixture file to load")
	creatorFlag := flag.String("creator", "", "user ID recorded as creator of seeded offers and challenges")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.Log)

	var creator *uuid.UUID
	if *creatorFlag != "" {
		id, err := uuid.Parse(*creatorFlag)
		if err != nil {
			logger.Fatal(err, "invalid creator ID", "value", *creatorFlag)
		}
		creator = &id
	}

	fixtures, err := seed.Load(*file)
	if err != nil {
		logger.Fatal(err, "failed to load fixtures", "file", *file)
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

	_, m := app.NewMetrics()
	services, err := app.NewServices(store, cfg, logger, m)
	if err != nil {
		logger.Fatal(err, "failed to build services")
	}

	seeder, err := seed.NewSeeder(services.Loyalty, services.Customers, services.Offers, services.Challenges, logger)
	if err != nil {
		logger.Fatal(err, "failed to create seeder")
	}

	if _, err := seeder.Run(ctx, fixtures, creator); err != nil {
		logger.Error(err, "seed failed", "file", *file)
		return
	}
}
