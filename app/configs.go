package app

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/RezaEskandarii/prnotifier/internal/message_broker"
	"github.com/RezaEskandarii/prnotifier/types/config"
	"github.com/redis/go-redis/v9"
)

// initStorageConnection opens the database of the configured storage driver.
func initStorageConnection(cfg *config.NotifierConfig) (*sql.DB, error) {
	switch cfg.StorageDriver {
	case config.Postgres:
		return openPostgresDB(cfg.PostgresConfig.ConnectionUrl)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %v", cfg.StorageDriver)
	}
}

func openPostgresDB(connectionURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connectionURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}

func initMessageBroker(cfg *config.NotifierConfig) (message_broker.MessageBroker, error) {
	switch cfg.MQDriver {
	case config.RabbitMQ:
		broker, err := message_broker.NewRabbitMQ(
			cfg.RabbitMQConfig.URL,
			cfg.RabbitMQConfig.Exchange,
			cfg.RabbitMQConfig.Queue,
			cfg.RabbitMQConfig.RoutingKey,
		)
		if err != nil {
			return nil, err
		}
		return broker, nil
	default:
		return nil, fmt.Errorf("unsupported message queue driver: %v", cfg.MQDriver)
	}
}

func openRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewLogger builds the process logger from the configured level and format.
func NewLogger(w io.Writer, cfg *config.NotifierConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("instance", cfg.Instance)
}
