package app

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/jwalitptl/salon-api/internal/config"
	"github.com/jwalitptl/salon-api/internal/repository/postgres"
	"github.com/jwalitptl/salon-api/pkg/logger"
)

// OpenMigrator opens a dedicated connection for schema migrations. Closing
// the migrator closes that connection.
func OpenMigrator(cfg config.DatabaseConfig, log *logger.Logger) (*postgres.Migrator, error) {
	if cfg.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("migrations are only supported for %s, got %q", config.DriverPostgres, cfg.Driver)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := postgres.NewMigrator(db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func migrateUp(cfg config.DatabaseConfig, log *logger.Logger) error {
	m, err := OpenMigrator(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Error(err, "Failed to close migrator")
		}
	}()
	return m.Up()
}
