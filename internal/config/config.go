package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Gmail          GmailConfig
	Collector      CollectorConfig
	Storage        StorageConfig
	Database       DatabaseConfig
	Broker         BrokerConfig
	Retry          RetryConfig
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	Logging        LoggingConfig
	Tracing        TracingConfig
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type GmailConfig struct {
	CredentialsFile string  `mapstructure:"credentials_file"`
	TokenFile       string  `mapstructure:"token_file"`
	UserID          string  `mapstructure:"user_id"`
	HomeAddress     string  `mapstructure:"home_address"`
	HomeDomain      string  `mapstructure:"home_domain"`
	Query           string  `mapstructure:"query"`
	PageSize        int     `mapstructure:"page_size"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
}

type CollectorConfig struct {
	Schedule     string        `mapstructure:"schedule"`
	Concurrency  int           `mapstructure:"concurrency"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	CycleTimeout time.Duration `mapstructure:"cycle_timeout"`
	OnFetchError string        `mapstructure:"on_fetch_error"` // "fail" or "skip"
	RunOnStart   bool          `mapstructure:"run_on_start"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "postgres" or "mongodb"
}

type DatabaseConfig struct {
	Postgres      PostgresConfig
	Redis         RedisConfig
	MongoDB       MongoDBConfig
	RunMigrations bool `mapstructure:"run_migrations"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type BrokerConfig struct {
	Type  string      `mapstructure:"type"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers    []string `mapstructure:"brokers"`
	StatsTopic string   `mapstructure:"stats_topic"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	RPS             float64       `mapstructure:"rps"`
	Burst           int           `mapstructure:"burst"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	MaxAge          time.Duration `mapstructure:"max_age"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
