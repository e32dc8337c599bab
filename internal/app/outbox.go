package app

import (
	"github.com/jwalitptl/salon-api/internal/config"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/messaging"
	"github.com/jwalitptl/salon-api/pkg/messaging/redis"
	"github.com/jwalitptl/salon-api/pkg/metrics"
	"github.com/jwalitptl/salon-api/pkg/worker"
)

// NewBroker connects the Redis broker outbox events are published to.
func NewBroker(cfg config.RedisConfig, log *logger.Logger) (messaging.Broker, error) {
	return redis.NewRedisBroker(cfg.ToBrokerConfig(), log.Zerolog())
}

// NewOutboxProcessor builds the processor that drains the outbox into broker.
func NewOutboxProcessor(store *repository.Store, broker messaging.Broker, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) *worker.OutboxProcessor {
	return worker.NewOutboxProcessor(
		store.Outbox,
		broker,
		cfg.Outbox.ToWorkerConfig(cfg.Redis.ChannelPrefix),
		log.WithFields(map[string]interface{}{"component": "outbox_processor"}),
		m,
	)
}
