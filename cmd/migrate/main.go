package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/jwalitptl/salon-api/internal/app"
	"github.com/jwalitptl/salon-api/internal/config"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.Log)

	m, err := app.OpenMigrator(cfg.Database, logger)
	if err != nil {
		logger.Fatal(err, "failed to create migrator")
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()

	case "down":
		err = m.Down()

	case "step":
		if len(args) < 2 {
			logger.Fatal(fmt.Errorf("missing step count"), "usage: migrate step <n>")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			logger.Fatal(convErr, "invalid step count", "value", args[1])
		}
		err = m.Steps(n)

	case "force":
		if len(args) < 2 {
			logger.Fatal(fmt.Errorf("missing version"), "usage: migrate force <version>")
		}
		v, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			logger.Fatal(convErr, "invalid version number", "value", args[1])
		}
		err = m.Force(v)

	case "version":
		version, dirty, vErr := m.Version()
		if vErr != nil {
			logger.Fatal(vErr, "failed to get version")
		}
		if version == 0 {
			logger.Info("no migrations applied")
		} else {
			logger.Info("current migration version", "version", version, "dirty", dirty)
		}

	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Fatal(err, "migration failed", "command", command)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Salon database migration tool

Usage:
  migrate <command> [arguments]

Commands:
  up                Apply all pending migrations
  down              Roll back all migrations
  step <n>          Apply n migrations (positive=up, negative=down)
  force <version>   Mark a version as applied after a failed migration
  version           Show the current migration version

Connection settings come from config.yaml and SALON_DB_* variables.`)
}
