package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"emailstats/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigFile(configFile)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(v, &cfg)
	cfg.Collector.OnFetchError = strings.ToLower(strings.TrimSpace(cfg.Collector.OnFetchError))

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", constants.DefaultHTTPPort)
	v.SetDefault("server.read_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("server.write_timeout", constants.DefaultHTTPTimeout)

	v.SetDefault("gmail.credentials_file", "credentials.json")
	v.SetDefault("gmail.token_file", "token.json")
	v.SetDefault("gmail.user_id", constants.DefaultGmailUser)
	v.SetDefault("gmail.home_domain", constants.DefaultHomeDomain)
	v.SetDefault("gmail.query", constants.DefaultCollectionQuery)
	v.SetDefault("gmail.page_size", constants.MaxGmailPageSize)
	v.SetDefault("gmail.rps", 10.0)
	v.SetDefault("gmail.burst", 10)

	v.SetDefault("collector.schedule", constants.DefaultSchedule)
	v.SetDefault("collector.concurrency", constants.DefaultConcurrency)
	v.SetDefault("collector.fetch_timeout", constants.DefaultFetchTimeout)
	v.SetDefault("collector.cycle_timeout", constants.DefaultCycleTimeout)
	v.SetDefault("collector.on_fetch_error", constants.OnFetchErrorFail)

	v.SetDefault("storage.driver", constants.StorageDriverPostgres)
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.mongodb.database", constants.DefaultMongoDBName)

	v.SetDefault("broker.kafka.stats_topic", constants.DefaultStatsTopic)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_interval", "500ms")
	v.SetDefault("retry.max_interval", "10s")
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.max_elapsed_time", "1m")

	v.SetDefault("rate_limit.rps", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.cleanup_interval", "5m")
	v.SetDefault("rate_limit.max_age", "10m")

	v.SetDefault("logging.level", "info")
}

func bindEnvVariables(v *viper.Viper) {
	_ = v.BindEnv("gmail.credentials_file", "GMAIL_CREDENTIALS_FILE")
	_ = v.BindEnv("gmail.token_file", "GMAIL_TOKEN_FILE")
	_ = v.BindEnv("gmail.home_address", "GMAIL_HOME_ADDRESS")
	_ = v.BindEnv("gmail.home_domain", "GMAIL_HOME_DOMAIN")

	_ = v.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	_ = v.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")

	_ = v.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")

	_ = v.BindEnv("database.mongodb.uri", "DATABASE_MONGODB_URI")
	_ = v.BindEnv("database.mongodb.database", "DATABASE_MONGODB_DATABASE")

	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("logging.level", "LOGGING_LEVEL")

	_ = v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	_ = v.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
	_ = v.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	_ = v.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
}

func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if brokersEnv := v.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}
}
