// Package app wires configuration, storage and services into the pieces the
// binaries under cmd/ run.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/salon-api/internal/config"
	"github.com/jwalitptl/salon-api/internal/handler"
	appointmentHandler "github.com/jwalitptl/salon-api/internal/handler/appointment"
	challengeHandler "github.com/jwalitptl/salon-api/internal/handler/challenge"
	customerHandler "github.com/jwalitptl/salon-api/internal/handler/customer"
	loyaltyHandler "github.com/jwalitptl/salon-api/internal/handler/loyalty"
	offerHandler "github.com/jwalitptl/salon-api/internal/handler/offer"
	socialHandler "github.com/jwalitptl/salon-api/internal/handler/social"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/repository/mongodb"
	"github.com/jwalitptl/salon-api/internal/repository/postgres"
	"github.com/jwalitptl/salon-api/internal/service/appointment"
	"github.com/jwalitptl/salon-api/internal/service/challenge"
	"github.com/jwalitptl/salon-api/internal/service/customer"
	"github.com/jwalitptl/salon-api/internal/service/event"
	"github.com/jwalitptl/salon-api/internal/service/loyalty"
	"github.com/jwalitptl/salon-api/internal/service/offer"
	"github.com/jwalitptl/salon-api/internal/service/optimistic"
	"github.com/jwalitptl/salon-api/internal/service/social"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

const metricsNamespace = "salon"

// NewLogger builds the application logger and makes it the global zerolog
// logger so middleware and libraries log the same way.
func NewLogger(cfg config.LogConfig) *logger.Logger {
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Console,
	})
	log.Logger = *l.Zerolog()
	return l
}

// NewMetrics returns a registry with the runtime collectors and the
// application metrics registered on it.
func NewMetrics() (*prometheus.Registry, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewMetrics(reg, metricsNamespace)
}

// OpenStore connects to the configured backend. The returned close func
// releases the connection.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*repository.Store, func() error, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		if cfg.AutoMigrate {
			if err := migrateUp(cfg, log); err != nil {
				return nil, nil, err
			}
		}
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Connected to PostgreSQL", "host", cfg.Host, "database", cfg.Name)
		return postgres.NewStore(db), db.Close, nil

	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		closeFn := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		}
		return mongodb.NewStore(client, cfg.MongoDatabase), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Services holds every domain service built over one store.
type Services struct {
	Customers    *customer.Service
	Loyalty      *loyalty.Service
	Programs     *loyalty.ProgramProvider
	Appointments *appointment.Service
	Social       *social.Service
	Challenges   *challenge.Service
	Offers       *offer.Service
}

// NewServices builds the domain services. Events go to the outbox when it
// is enabled and are dropped otherwise.
func NewServices(store *repository.Store, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*Services, error) {
	loc, err := cfg.Pricing.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid pricing timezone: %w", err)
	}

	var events event.Emitter = event.Nop{}
	if cfg.Outbox.Enabled {
		events = event.NewService(store.Outbox)
	}

	policy := optimistic.Policy{
		MaxAttempts:  cfg.Loyalty.MaxUpdateAttempts,
		InitialDelay: cfg.Loyalty.RetryInitialDelay,
	}

	customers := customer.NewService(store.Customers, nil)
	programs := loyalty.NewProgramProvider(store.Programs, cfg.Loyalty.ProgramCacheTTL, loyalty.ProgramDefaults{
		PointValue:      decimal.NewFromFloat(cfg.Loyalty.DefaultPointValue),
		PointsPerDollar: decimal.NewFromFloat(cfg.Loyalty.DefaultPointsPerDollar),
	})
	loyaltySvc := loyalty.NewService(store.Accounts, store.Programs, programs, customers, events, log, m, policy)

	return &Services{
		Customers: customers,
		Loyalty:   loyaltySvc,
		Programs:  programs,
		Appointments: appointment.NewService(
			store.Appointments,
			customers,
			loyaltySvc,
			programs,
			events,
			log,
			m,
			appointment.PricingConfig{TaxRate: cfg.Pricing.TaxRateDecimal(), Location: loc},
			policy,
		),
		Social:     social.NewService(store.Posts, store.Ratings, events, log, m),
		Challenges: challenge.NewService(store.Challenges, events, log, m, policy),
		Offers:     offer.NewService(store.Offers, events, log, m, policy),
	}, nil
}

// Routes returns the resource handlers mounted under /api/v1.
func (s *Services) Routes() []handler.Routes {
	return []handler.Routes{
		customerHandler.NewHandler(s.Customers),
		appointmentHandler.NewHandler(s.Appointments),
		loyaltyHandler.NewHandler(s.Loyalty),
		socialHandler.NewHandler(s.Social),
		challengeHandler.NewHandler(s.Challenges),
		offerHandler.NewHandler(s.Offers),
	}
}
