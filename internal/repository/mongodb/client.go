package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jwalitptl/salon-api/internal/config"
	"github.com/jwalitptl/salon-api/pkg/logger"
)

const (
	colCustomers    = "customers"
	colAppointments = "appointments"
	colAccounts     = "loyalty_accounts"
	colPrograms     = "loyalty_programs"
	colPosts        = "posts"
	colRatings      = "ratings"
	colChallenges   = "challenges"
	colOffers       = "offers"
	colOutbox       = "outbox_events"
)

// Connect opens a client with the UUID/decimal registry and checks it.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("database connection URL is empty")
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetRegistry(NewRegistry()).
		SetConnectTimeout(5 * time.Second)
	if cfg.MaxOpenConn > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxOpenConn))
	}
	if cfg.MaxIdleConn > 0 {
		opts.SetMinPoolSize(uint64(cfg.MaxIdleConn))
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("Connected to MongoDB", "database", cfg.MongoDatabase)
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. Existing
// indexes with the same keys are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		colAccounts: {
			{Keys: bson.D{{Key: "customer", Value: 1}}, Options: options.Index().SetName("loyalty_account_customer").SetUnique(true)},
		},
		colPrograms: {
			{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "updated_at", Value: -1}}, Options: options.Index().SetName("loyalty_program_active")},
		},
		colAppointments: {
			{Keys: bson.D{{Key: "customer", Value: 1}, {Key: "scheduling.date_time", Value: -1}}, Options: options.Index().SetName("appointment_customer_date")},
			{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("appointment_status")},
		},
		colPosts: {
			{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "rating.average_rating", Value: -1}}, Options: options.Index().SetName("post_trending")},
			{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "category", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("post_category")},
			{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "author", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("post_author")},
		},
		colRatings: {
			{Keys: bson.D{{Key: "post", Value: 1}}, Options: options.Index().SetName("rating_post")},
		},
		colChallenges: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("challenge_status")},
		},
		colOffers: {
			{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "category", Value: 1}, {Key: "valid_until", Value: 1}}, Options: options.Index().SetName("offer_active")},
		},
		colOutbox: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("outbox_status_created")},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

type pinger struct {
	client *mongo.Client
}

func (p pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}
