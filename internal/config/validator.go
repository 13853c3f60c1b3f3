package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"emailstats/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateGmail(cfg.Gmail); err != nil {
		errors = append(errors, err)
	}

	if err := validateCollector(cfg.Collector); err != nil {
		errors = append(errors, err)
	}

	if err := validateStorage(cfg.Storage, cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if err := validateRetry(cfg.Retry); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeout <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeout <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateGmail(cfg GmailConfig) error {
	if strings.TrimSpace(cfg.HomeAddress) == "" {
		return &ValidationError{
			Field:   "gmail.home_address",
			Message: "home address is required",
		}
	}

	if cfg.HomeDomain == "" {
		return &ValidationError{
			Field:   "gmail.home_domain",
			Message: "home domain is required",
		}
	}

	if cfg.Query == "" {
		return &ValidationError{
			Field:   "gmail.query",
			Message: "collection query is required",
		}
	}

	if cfg.PageSize < 1 || cfg.PageSize > constants.MaxGmailPageSize {
		return &ValidationError{
			Field:   "gmail.page_size",
			Message: fmt.Sprintf("page size must be between 1 and %d, got %d", constants.MaxGmailPageSize, cfg.PageSize),
		}
	}

	if cfg.RPS < 0 {
		return &ValidationError{
			Field:   "gmail.rps",
			Message: "rps must be non-negative",
		}
	}

	return nil
}

func validateCollector(cfg CollectorConfig) error {
	if _, err := cron.NewParser(constants.CronParseOptions).Parse(cfg.Schedule); err != nil {
		return &ValidationError{
			Field:   "collector.schedule",
			Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.Schedule, err),
		}
	}

	if cfg.Concurrency < 1 || cfg.Concurrency > constants.MaxConcurrency {
		return &ValidationError{
			Field:   "collector.concurrency",
			Message: fmt.Sprintf("concurrency must be between 1 and %d, got %d", constants.MaxConcurrency, cfg.Concurrency),
		}
	}

	if cfg.FetchTimeout < 0 {
		return &ValidationError{
			Field:   "collector.fetch_timeout",
			Message: "fetch timeout must be non-negative",
		}
	}

	if cfg.CycleTimeout <= 0 || cfg.CycleTimeout >= constants.CycleLockTTL {
		return &ValidationError{
			Field:   "collector.cycle_timeout",
			Message: fmt.Sprintf("cycle timeout must be positive and shorter than the cycle lock ttl %s, got %s", constants.CycleLockTTL, cfg.CycleTimeout),
		}
	}

	switch strings.ToLower(cfg.OnFetchError) {
	case constants.OnFetchErrorFail, constants.OnFetchErrorSkip:
	default:
		return &ValidationError{
			Field:   "collector.on_fetch_error",
			Message: fmt.Sprintf("invalid on_fetch_error value: %s (valid: fail, skip)", cfg.OnFetchError),
		}
	}

	return nil
}

func validateStorage(storage StorageConfig, db DatabaseConfig) error {
	switch storage.Driver {
	case constants.StorageDriverPostgres:
		if err := validatePostgres(db.Postgres); err != nil {
			return err
		}
	case constants.StorageDriverMongoDB:
		if err := validateMongoDB(db.MongoDB); err != nil {
			return err
		}
	default:
		return &ValidationError{
			Field:   "storage.driver",
			Message: fmt.Sprintf("unknown storage driver: %s (supported: postgres, mongodb)", storage.Driver),
		}
	}

	if db.Redis.Host != "" {
		if err := validateRedis(db.Redis); err != nil {
			return err
		}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "PostgreSQL host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{
			Field:   "database.postgres.user",
			Message: "PostgreSQL user is required",
		}
	}

	if cfg.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "PostgreSQL database name is required",
		}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "database.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s (valid: disable, allow, prefer, require, verify-ca, verify-full)", cfg.SSLMode),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateMongoDB(cfg MongoDBConfig) error {
	if cfg.URI == "" {
		return &ValidationError{
			Field:   "database.mongodb.uri",
			Message: "MongoDB URI is required",
		}
	}

	if !strings.HasPrefix(cfg.URI, "mongodb://") && !strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		return &ValidationError{
			Field:   "database.mongodb.uri",
			Message: "MongoDB URI must start with mongodb:// or mongodb+srv://",
		}
	}

	if cfg.Database == "" {
		return &ValidationError{
			Field:   "database.mongodb.database",
			Message: "MongoDB database name is required",
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	switch cfg.Type {
	case "":
		return nil
	case "kafka":
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka)", cfg.Type),
		}
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Kafka.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.Kafka.StatsTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka.stats_topic",
			Message: "stats topic is required",
		}
	}

	return nil
}

func validateRetry(cfg RetryConfig) error {
	if cfg.MaxAttempts < 0 {
		return &ValidationError{
			Field:   "retry.max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.InitialInterval < 0 {
		return &ValidationError{
			Field:   "retry.initial_interval",
			Message: "initial_interval must be non-negative",
		}
	}

	if cfg.MaxInterval > 0 && cfg.InitialInterval > 0 && cfg.MaxInterval < cfg.InitialInterval {
		return &ValidationError{
			Field:   "retry.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if cfg.Multiplier <= 0 {
		return &ValidationError{
			Field:   "retry.multiplier",
			Message: "multiplier must be positive",
		}
	}

	return nil
}
