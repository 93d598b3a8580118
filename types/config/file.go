package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors the TOML layout of the configuration file.
type fileConfig struct {
	Instance              string          `toml:"instance"`
	WorkerCount           int             `toml:"worker_count"`
	TickInterval          duration        `toml:"tick_interval"`
	TokenRefreshInterval  duration        `toml:"token_refresh_interval"`
	TokenRefreshLookahead duration        `toml:"token_refresh_lookahead"`
	ProviderTimeout       duration        `toml:"provider_timeout"`
	StoreTimeout          duration        `toml:"store_timeout"`
	ExecutionTimeout      duration        `toml:"execution_timeout"`
	ProviderRateLimit     float64         `toml:"provider_rate_limit"`
	MetricsAddr           string          `toml:"metrics_addr"`
	LogLevel              string          `toml:"log_level"`
	LogFormat             string          `toml:"log_format"`
	Postgres              PostgresConfig  `toml:"postgres"`
	Redis                 RedisConfig     `toml:"redis"`
	RabbitMQ              RabbitMQConfig  `toml:"rabbitmq"`
	Providers             ProvidersConfig `toml:"providers"`
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Environment overrides applied on top of the file.
const (
	EnvPostgresURL = "PRNOTIFIER_POSTGRES_URL"
	EnvRedisAddr   = "PRNOTIFIER_REDIS_ADDR"
	EnvRabbitMQURL = "PRNOTIFIER_RABBITMQ_URL"
	EnvMetricsAddr = "PRNOTIFIER_METRICS_ADDR"

	EnvGitLabClientSecret = "PRNOTIFIER_GITLAB_CLIENT_SECRET"
)

// LoadFile reads a TOML configuration file, applies environment overrides and
// validates the result through the functional options.
// An empty path skips the file and relies on the environment alone.
func LoadFile(path string) (*NotifierConfig, error) {
	var fc fileConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	applyEnv(&fc)

	if fc.Instance == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "prnotifier"
		}
		fc.Instance = host
	}

	return NewNotifierConfig(fc.Instance, fc.options()...)
}

func applyEnv(fc *fileConfig) {
	if v := os.Getenv(EnvPostgresURL); v != "" {
		fc.Postgres.ConnectionUrl = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		fc.Redis.Address = v
	}
	if v := os.Getenv(EnvRabbitMQURL); v != "" {
		fc.RabbitMQ.URL = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		fc.MetricsAddr = v
	}
	if v := os.Getenv(EnvGitLabClientSecret); v != "" {
		fc.Providers.GitLabClientSecret = v
	}
}

func (fc fileConfig) options() []Option {
	opts := []Option{WithPostgresConfig(fc.Postgres), WithProvidersConfig(fc.Providers)}

	if fc.WorkerCount != 0 {
		opts = append(opts, WithWorkerCount(fc.WorkerCount))
	}
	if fc.TickInterval.Duration != 0 {
		opts = append(opts, WithTickInterval(fc.TickInterval.Duration))
	}
	if fc.TokenRefreshInterval.Duration != 0 || fc.TokenRefreshLookahead.Duration != 0 {
		opts = append(opts, WithTokenRefresh(
			orDefault(fc.TokenRefreshInterval.Duration, DefaultTokenRefreshInterval),
			orDefault(fc.TokenRefreshLookahead.Duration, DefaultTokenRefreshLookahead),
		))
	}
	if fc.ProviderTimeout.Duration != 0 || fc.StoreTimeout.Duration != 0 || fc.ExecutionTimeout.Duration != 0 {
		opts = append(opts, WithTimeouts(
			orDefault(fc.ProviderTimeout.Duration, DefaultProviderTimeout),
			orDefault(fc.StoreTimeout.Duration, DefaultStoreTimeout),
			orDefault(fc.ExecutionTimeout.Duration, DefaultExecutionTimeout),
		))
	}
	if fc.ProviderRateLimit != 0 {
		opts = append(opts, WithProviderRateLimit(fc.ProviderRateLimit))
	}
	if fc.MetricsAddr != "" {
		opts = append(opts, WithMetricsAddr(fc.MetricsAddr))
	}
	if fc.LogLevel != "" || fc.LogFormat != "" {
		level := fc.LogLevel
		if level == "" {
			level = DefaultLogLevel
		}
		format := LogFormat(fc.LogFormat)
		if format == "" {
			format = DefaultLogFormat
		}
		opts = append(opts, WithLogging(level, format))
	}
	if fc.Redis.Address != "" {
		opts = append(opts, WithRedisConfig(fc.Redis))
	}
	if fc.RabbitMQ.URL != "" {
		opts = append(opts, WithRabbitMQConfig(fc.RabbitMQ))
	}
	return opts
}

func orDefault(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return d
}
