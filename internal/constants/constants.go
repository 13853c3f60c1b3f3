package constants

import (
	"time"

	"github.com/robfig/cron/v3"
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPPort    = 8080
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	ServiceName = "email-stats"
)

const (
	DefaultGmailUser       = "me"
	DefaultHomeDomain      = "@gmail.com"
	DefaultCollectionQuery = "newer_than:1h"
	MaxGmailPageSize       = 500
)

const (
	DefaultSchedule     = "0 0 * * * *"
	DefaultConcurrency  = 20
	MaxConcurrency      = 200
	DefaultFetchTimeout = 10 * time.Second
	DefaultCycleTimeout = 10 * time.Minute
)

// CronParseOptions accepts the six-field form with a leading seconds field.
const CronParseOptions = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

const (
	OnFetchErrorFail = "fail"
	OnFetchErrorSkip = "skip"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMongoDB  = "mongodb"
)

const (
	DefaultMongoDBName     = "email_stats"
	StatsCollectionName    = "email_stats"
	StatsTableName         = "email_stats"
	DefaultStatsTopic      = "email_stats"
	StatsRecordedEventType = "email_stats.recorded"
)

const (
	CycleLockKey = "email-stats:cycle-lock"
	CycleLockTTL = 15 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DayLayout = "2006-01-02"
)
