package app

import (
	"database/sql"
	"log/slog"

	"github.com/RezaEskandarii/prnotifier/internal/message_broker"
	"github.com/RezaEskandarii/prnotifier/internal/provider"
	"github.com/redis/go-redis/v9"
)

// ContainerOption configures Container creation. Used for testing and customization.
type ContainerOption func(*containerConfig)

type containerConfig struct {
	// Optional: inject custom connections instead of creating them from config
	db       *sql.DB
	redis    *redis.Client
	broker   message_broker.MessageBroker
	registry *provider.Registry
	logger   *slog.Logger
}

// WithDB injects a custom database connection. Useful for testing.
func WithDB(db *sql.DB) ContainerOption {
	return func(c *containerConfig) {
		c.db = db
	}
}

// WithRedis injects a custom Redis client. Useful for testing.
func WithRedis(redis *redis.Client) ContainerOption {
	return func(c *containerConfig) {
		c.redis = redis
	}
}

// WithBroker injects the execution event publisher.
func WithBroker(broker message_broker.MessageBroker) ContainerOption {
	return func(c *containerConfig) {
		c.broker = broker
	}
}

// WithRegistry replaces the default provider registry.
func WithRegistry(registry *provider.Registry) ContainerOption {
	return func(c *containerConfig) {
		c.registry = registry
	}
}

func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *containerConfig) {
		c.logger = logger
	}
}
