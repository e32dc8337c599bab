package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/jwalitptl/salon-api/pkg/messaging/redis"
	"github.com/jwalitptl/salon-api/pkg/worker"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Loyalty  LoyaltyConfig  `mapstructure:"loyalty"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int             `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name"`
	SSLMode     string `mapstructure:"sslmode"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	MaxOpenConn int    `mapstructure:"max_open_conns"`
	MaxIdleConn int    `mapstructure:"max_idle_conns"`

	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
}

// DSN is the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

// URL is the postgres:// form golang-migrate expects.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	MaxRetries    int           `mapstructure:"max_retries"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
	PoolSize      int           `mapstructure:"pool_size"`
	MinIdleConns  int           `mapstructure:"min_idle_conns"`
	ChannelPrefix string        `mapstructure:"channel_prefix"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type PricingConfig struct {
	TaxRate  float64 `mapstructure:"tax_rate"`
	Timezone string  `mapstructure:"timezone"`
}

// TaxRateDecimal returns the tax rate as money arithmetic needs it.
func (c PricingConfig) TaxRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TaxRate)
}

// Location loads the timezone display names are rendered in.
func (c PricingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

type LoyaltyConfig struct {
	ProgramCacheTTL        time.Duration `mapstructure:"program_cache_ttl"`
	MaxUpdateAttempts      int           `mapstructure:"max_update_attempts"`
	RetryInitialDelay      time.Duration `mapstructure:"retry_initial_delay"`
	DefaultPointValue      float64       `mapstructure:"default_point_value"`
	DefaultPointsPerDollar float64       `mapstructure:"default_points_per_dollar"`
}

type OutboxConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	Retention     time.Duration `mapstructure:"retention"`
	CleanupEvery  time.Duration `mapstructure:"cleanup_interval"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// envOverrides are applied last so container deployments can patch
// individual values without shipping a config file.
type envOverrides struct {
	DBDriver   string `envconfig:"DB_DRIVER"`
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	MongoURI   string `envconfig:"MONGO_URI"`
	RedisURL   string `envconfig:"REDIS_URL"`
	JWTSecret  string `envconfig:"JWT_SECRET"`
	Port       int    `envconfig:"PORT"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
}

const envPrefix = "SALON"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests_per_second", 20.0)
	v.SetDefault("server.rate_limit.burst", 40)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "salon")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongo_database", "salon")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.channel_prefix", "salon")

	v.SetDefault("pricing.tax_rate", 0.085)
	v.SetDefault("pricing.timezone", "UTC")

	v.SetDefault("loyalty.program_cache_ttl", time.Minute)
	v.SetDefault("loyalty.max_update_attempts", 5)
	v.SetDefault("loyalty.retry_initial_delay", 20*time.Millisecond)
	v.SetDefault("loyalty.default_point_value", 0.01)
	v.SetDefault("loyalty.default_points_per_dollar", 1.0)

	v.SetDefault("outbox.enabled", true)
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 2*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", 500*time.Millisecond)
	v.SetDefault("outbox.retention", 7*24*time.Hour)
	v.SetDefault("outbox.cleanup_interval", time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)
}

// LoadConfig reads .env (if present), then config.yaml, then SALON_* env
// overrides. A missing config file is not an error; defaults apply.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	}
	v.AddConfigPath(".")           // current directory
	v.AddConfigPath("./config")    // config subdirectory
	v.AddConfigPath("/app")        // container root directory
	v.AddConfigPath("/app/config") // container config directory

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}

	if env.DBDriver != "" {
		c.Database.Driver = env.DBDriver
	}
	if env.DBHost != "" {
		c.Database.Host = env.DBHost
	}
	if env.DBPort != 0 {
		c.Database.Port = env.DBPort
	}
	if env.DBUser != "" {
		c.Database.User = env.DBUser
	}
	if env.DBPassword != "" {
		c.Database.Password = env.DBPassword
	}
	if env.DBName != "" {
		c.Database.Name = env.DBName
	}
	if env.MongoURI != "" {
		c.Database.MongoURI = env.MongoURI
	}
	if env.RedisURL != "" {
		c.Redis.URL = env.RedisURL
		c.Redis.Enabled = true
	}
	if env.JWTSecret != "" {
		c.JWT.Secret = env.JWTSecret
	}
	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	return nil
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Pricing.TaxRate < 0 || c.Pricing.TaxRate >= 1 {
		return fmt.Errorf("pricing.tax_rate must be in [0, 1), got %v", c.Pricing.TaxRate)
	}
	if _, err := c.Pricing.Location(); err != nil {
		return fmt.Errorf("invalid pricing.timezone: %w", err)
	}
	if c.Loyalty.MaxUpdateAttempts <= 0 {
		return fmt.Errorf("loyalty.max_update_attempts must be greater than 0")
	}
	return nil
}

// Add conversion methods to convert config types
func (c *OutboxConfig) ToWorkerConfig(channelPrefix string) worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:     c.BatchSize,
		PollInterval:  c.PollInterval,
		RetryAttempts: c.RetryAttempts,
		RetryDelay:    c.RetryDelay,
		ChannelPrefix: channelPrefix,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}
