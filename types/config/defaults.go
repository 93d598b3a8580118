package config

import "time"

const (
	DefaultWorkerCount           = 5
	DefaultStorageDriver         = Postgres
	DefaultTickInterval          = time.Minute
	DefaultTokenRefreshInterval  = 15 * time.Minute
	DefaultTokenRefreshLookahead = time.Hour
	DefaultProviderTimeout       = 15 * time.Second
	DefaultStoreTimeout          = 5 * time.Second
	DefaultExecutionTimeout      = 2 * time.Minute
	DefaultProviderRateLimit     = 10 // requests per second per provider client
	DefaultMetricsAddr           = ":9090"
	DefaultLogLevel              = "info"
	DefaultLogFormat             = LogFormatText
)
