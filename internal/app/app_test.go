package app

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/config"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{TaxRate: 0.085, Timezone: "UTC"},
		Loyalty: config.LoyaltyConfig{MaxUpdateAttempts: 3, DefaultPointValue: 0.01, DefaultPointsPerDollar: 1},
		Outbox:  config.OutboxConfig{Enabled: true},
	}
}

func TestNewServicesBuildsEveryRoute(t *testing.T) {
	_, m := NewMetrics()
	services, err := NewServices(&repository.Store{}, testConfig(), logger.Nop(), m)
	require.NoError(t, err)

	assert.NotNil(t, services.Customers)
	assert.NotNil(t, services.Loyalty)
	assert.NotNil(t, services.Programs)
	assert.NotNil(t, services.Appointments)
	assert.NotNil(t, services.Social)
	assert.NotNil(t, services.Challenges)
	assert.NotNil(t, services.Offers)
	assert.Len(t, services.Routes(), 6)
}

func TestNewServicesRejectsBadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Pricing.Timezone = "Nowhere/Special"

	_, err := NewServices(&repository.Store{}, cfg, logger.Nop(), nil)
	assert.ErrorContains(t, err, "invalid pricing timezone")
}

func TestNewMetricsRegistersCollectors(t *testing.T) {
	reg, m := NewMetrics()
	m.OutboxEventsProcessed.Inc()

	n, err := testutil.GatherAndCount(reg, "salon_outbox_events_processed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
}

func TestOpenStoreUnsupportedDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), config.DatabaseConfig{Driver: "sqlite"}, logger.Nop())
	assert.ErrorContains(t, err, `unsupported database driver "sqlite"`)
}

func TestOpenMigratorRequiresPostgres(t *testing.T) {
	_, err := OpenMigrator(config.DatabaseConfig{Driver: config.DriverMongo}, logger.Nop())
	assert.ErrorContains(t, err, "only supported for postgres")
}

func TestNewLoggerSetsLevel(t *testing.T) {
	l := NewLogger(config.LogConfig{Level: "warn"})
	assert.Equal(t, logger.WarnLevel, l.Zerolog().GetLevel())
}
