package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RezaEskandarii/prnotifier/internal/db"
	"github.com/RezaEskandarii/prnotifier/internal/executor"
	"github.com/RezaEskandarii/prnotifier/internal/lock"
	"github.com/RezaEskandarii/prnotifier/internal/message_broker"
	"github.com/RezaEskandarii/prnotifier/internal/oauthstate"
	"github.com/RezaEskandarii/prnotifier/internal/provider"
	"github.com/RezaEskandarii/prnotifier/internal/store"
	"github.com/RezaEskandarii/prnotifier/internal/store/postgres"
	"github.com/RezaEskandarii/prnotifier/internal/tick"
	"github.com/RezaEskandarii/prnotifier/internal/tokenrefresh"
	"github.com/RezaEskandarii/prnotifier/types/config"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies. It is the single source of truth
// for dependency injection and ensures connections and services are created once.
type Container struct {
	Config *config.NotifierConfig
	Logger *slog.Logger

	// Storage connections (created once, shared by all stores)
	DB    *sql.DB
	Redis *redis.Client

	// Stores (implement interfaces for testability)
	ScheduleStore   store.ScheduleStore
	EscalationStore store.EscalationStore
	ProviderStore   store.ProviderStore

	// Infrastructure
	LockManager   lock.DistributedLockManager
	MessageBroker message_broker.MessageBroker
	Registry      *provider.Registry

	// Nil when Redis is not configured.
	OAuthStates *oauthstate.Store

	Executor     *executor.Executor
	Orchestrator *tick.Orchestrator
	Sweeper      *tokenrefresh.Sweeper
}

// NewContainer creates and wires all dependencies. Single entry point for DI.
// Call this once per application lifecycle.
// Pass optional WithDB, WithRedis, WithBroker, WithRegistry to inject dependencies for testing.
func NewContainer(ctx context.Context, cfg *config.NotifierConfig, opts ...ContainerOption) (*Container, error) {
	opt := &containerConfig{}
	for _, o := range opts {
		o(opt)
	}

	logger := opt.logger
	if logger == nil {
		logger = slog.Default()
	}

	sqlDB := opt.db
	if sqlDB == nil {
		var err error
		if sqlDB, err = initStorageConnection(cfg); err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
	}

	redisClient := opt.redis
	if redisClient == nil && cfg.RedisConfig.Enabled() {
		redisClient = openRedis(cfg.RedisConfig)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
	}

	messageBroker := opt.broker
	if messageBroker == nil && cfg.UseEventPublisher {
		var err error
		if messageBroker, err = initMessageBroker(cfg); err != nil {
			return nil, fmt.Errorf("init message broker: %w", err)
		}
	}

	registry := opt.registry
	if registry == nil {
		registry = provider.NewDefaultRegistry(cfg.ProvidersConfig, cfg.ProviderTimeout, cfg.ProviderRateLimit)
	}

	scheduleStore := postgres.NewPostgresScheduleStore(sqlDB)
	escalationStore := postgres.NewPostgresEscalationStore(sqlDB)
	providerStore := postgres.NewPostgresProviderStore(sqlDB)
	lockMgr := lock.NewPostgresDistributedLockManager(sqlDB)

	exec := executor.New(scheduleStore, escalationStore, providerStore, registry,
		executor.WithLogger(logger),
		executor.WithInstance(cfg.Instance),
		executor.WithTimeouts(cfg.ProviderTimeout, cfg.StoreTimeout, cfg.ExecutionTimeout),
		executor.WithBroker(messageBroker),
	)

	sweeper := tokenrefresh.NewSweeper(providerStore, registry,
		tokenrefresh.WithLock(lockMgr),
		tokenrefresh.WithLookahead(cfg.TokenRefreshLookahead),
		tokenrefresh.WithStoreTimeout(cfg.StoreTimeout),
		tokenrefresh.WithLogger(logger),
	)

	var states *oauthstate.Store
	if redisClient != nil {
		states = oauthstate.NewStore(redisClient)
	}

	return &Container{
		Config:          cfg,
		Logger:          logger,
		DB:              sqlDB,
		Redis:           redisClient,
		ScheduleStore:   scheduleStore,
		EscalationStore: escalationStore,
		ProviderStore:   providerStore,
		LockManager:     lockMgr,
		MessageBroker:   messageBroker,
		Registry:        registry,
		OAuthStates:     states,
		Executor:        exec,
		Orchestrator:    tick.NewOrchestrator(scheduleStore, exec, cfg.WorkerCount, cfg.StoreTimeout, logger),
		Sweeper:         sweeper,
	}, nil
}

// Migrate applies the embedded schema migrations.
func (c *Container) Migrate(ctx context.Context) error {
	return db.Init(ctx, c.DB, c.LockManager)
}

// Close releases every connection the container holds.
func (c *Container) Close() error {
	var errs []error
	if c.MessageBroker != nil {
		errs = append(errs, c.MessageBroker.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
