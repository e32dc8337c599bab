package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_FILE", path)
}

func TestLoadConfigFromFile(t *testing.T) {
	writeConfig(t, `
server:
  port: 9090
database:
  driver: mongo
  mongo_uri: mongodb://db:27017
pricing:
  tax_rate: 0.07
  timezone: America/New_York
outbox:
  poll_interval: 5s
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.MongoURI)
	assert.Equal(t, "0.07", cfg.Pricing.TaxRateDecimal().String())
	assert.Equal(t, 5*time.Second, cfg.Outbox.PollInterval)

	// untouched sections keep their defaults
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.Equal(t, 5, cfg.Loyalty.MaxUpdateAttempts)
	assert.Equal(t, time.Minute, cfg.Loyalty.ProgramCacheTTL)

	loc, err := cfg.Pricing.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestEnvOverrides(t *testing.T) {
	writeConfig(t, "database:\n  host: filehost\n")
	t.Setenv("SALON_DB_HOST", "envhost")
	t.Setenv("SALON_DB_PORT", "6543")
	t.Setenv("SALON_REDIS_URL", "redis://cache:6379/1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "envhost", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Contains(t, cfg.Database.DSN(), "host=envhost port=6543")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"driver", "database:\n  driver: sqlite\n", "unsupported database driver"},
		{"tax rate", "pricing:\n  tax_rate: 1.5\n", "pricing.tax_rate"},
		{"timezone", "pricing:\n  timezone: Mars/Olympus\n", "invalid pricing.timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.body)
			_, err := LoadConfig()
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestConversions(t *testing.T) {
	outbox := OutboxConfig{BatchSize: 10, PollInterval: time.Second, RetryAttempts: 2, RetryDelay: time.Millisecond}
	wc := outbox.ToWorkerConfig("salon")
	assert.Equal(t, 10, wc.BatchSize)
	assert.Equal(t, "salon", wc.ChannelPrefix)

	redis := RedisConfig{URL: "redis://x:6379", PoolSize: 4}
	bc := redis.ToBrokerConfig()
	assert.Equal(t, "redis://x:6379", bc.URL)
	assert.Equal(t, 4, bc.PoolSize)
}
