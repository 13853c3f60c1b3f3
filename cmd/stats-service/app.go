package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"emailstats/internal/collector"
	"emailstats/internal/config"
	"emailstats/internal/constants"
	"emailstats/internal/gmail"
	"emailstats/internal/logger"
	"emailstats/internal/stats"
	"emailstats/pkg/bootstrap"
	"emailstats/pkg/circuitbreaker"
	errs "emailstats/pkg/errors"
	"emailstats/pkg/health"
	"emailstats/pkg/metrics"
	"emailstats/pkg/middleware"
	"emailstats/pkg/migrations"
	"emailstats/pkg/ratelimit"
	"emailstats/pkg/retry"
	"emailstats/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	repo           stats.Repository
	collector      *collector.Service
	scheduler      *collector.Scheduler
	health         *health.CheckerRegistry
	rateStore      *ratelimit.Store
	router         *gin.Engine
	server         *http.Server
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
		health:      health.NewCheckerRegistry(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.Register()

	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	if err := a.initStorage(ctx); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	if redisClient != nil {
		a.redisClient = redisClient
		a.health.RegisterOptional(health.NewRedisChecker(redisClient))
	}

	if err := a.InitBroker(); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initCollector(ctx); err != nil {
		return fmt.Errorf("failed to initialize collector: %w", err)
	}

	a.initRouter()
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	return nil
}

func (a *App) initStorage(ctx context.Context) error {
	var repo stats.Repository

	switch a.Config.Storage.Driver {
	case constants.StorageDriverMongoDB:
		client, err := a.dbConnector.InitMongoDB(ctx)
		if err != nil {
			return err
		}
		a.mongoClient = client
		a.health.Register(health.NewMongoDBChecker(client))

		db := client.Database(a.Config.Database.MongoDB.Database)
		if a.Config.Database.RunMigrations {
			if err := migrations.EnsureStatsIndexes(ctx, db, constants.StatsCollectionName); err != nil {
				return err
			}
			a.Logger.Info("MongoDB indexes ensured")
		}
		repo = stats.NewMongoRepository(db)

	default:
		db, err := a.dbConnector.InitPostgreSQL(ctx)
		if err != nil {
			return err
		}
		a.db = db
		a.health.Register(health.NewPostgreSQLChecker(db))

		if a.Config.Database.RunMigrations {
			if err := migrations.RunPostgres(db); err != nil {
				return err
			}
			a.Logger.Info("PostgreSQL migrations applied")
		}
		repo = stats.NewPostgresRepository(db)
	}

	a.repo = stats.NewCircuitBreakerRepository(repo, "stats-repository", a.Config.CircuitBreaker)
	return nil
}

func (a *App) retryPolicy() retry.Policy {
	rc := a.Config.Retry
	return retry.Policy{
		MaxAttempts:     rc.MaxAttempts,
		InitialInterval: rc.InitialInterval,
		MaxInterval:     rc.MaxInterval,
		Multiplier:      rc.Multiplier,
		MaxElapsedTime:  rc.MaxElapsedTime,
	}
}

func (a *App) initCollector(ctx context.Context) error {
	gc := a.Config.Gmail

	svc, err := gmail.NewService(ctx, gc.CredentialsFile, gc.TokenFile)
	if err != nil {
		return err
	}

	opts := []gmail.ResilientOption{
		gmail.WithRateLimit(gc.RPS, gc.Burst),
		gmail.WithRetryPolicy(a.retryPolicy()),
	}
	if cb := a.Config.CircuitBreaker; cb.Enabled {
		breakerCfg := gmail.BreakerConfig("gmail").
			WithThresholds(cb.MaxRequests, cb.Interval, cb.Timeout, cb.FailureRatio, cb.MinRequests)
		opts = append(opts, gmail.WithCircuitBreaker(circuitbreaker.NewWrapper(breakerCfg)))
	}
	client := gmail.NewResilient(gmail.NewGoogleAPIClient(svc, gc.UserID), a.Logger, opts...)

	cc := a.Config.Collector
	aggregator := collector.NewAggregator(
		collector.NewClassifier(gc.HomeAddress, gc.HomeDomain),
		collector.AggregatorConfig{
			Concurrency:  cc.Concurrency,
			FetchTimeout: cc.FetchTimeout,
			OnFetchError: cc.OnFetchError,
		},
		a.Logger,
	)

	serviceOpts := []collector.ServiceOption{
		collector.WithPublisher(stats.NewPublisher(a.Producer, a.Config.Broker.Kafka.StatsTopic)),
	}
	if a.redisClient != nil {
		serviceOpts = append(serviceOpts, collector.WithLocker(
			collector.NewRedisLocker(a.redisClient, constants.CycleLockKey, constants.CycleLockTTL),
		))
	}

	a.collector = collector.NewService(
		client,
		collector.NewEnumerator(client, gc.PageSize, a.Logger),
		aggregator,
		a.repo,
		collector.ServiceConfig{
			Query:        gc.Query,
			CycleTimeout: cc.CycleTimeout,
			PersistRetry: a.retryPolicy(),
		},
		a.Logger,
		serviceOpts...,
	)

	scheduler, err := collector.NewScheduler(cc.Schedule, a.collector, cc.RunOnStart, a.Logger)
	if err != nil {
		return err
	}
	a.scheduler = scheduler

	a.Logger.Infow("Collector configured",
		"schedule", cc.Schedule,
		"concurrency", cc.Concurrency,
		"on_fetch_error", cc.OnFetchError,
		"distributed_lock", a.redisClient != nil,
		"publish_events", a.Producer != nil,
	)
	return nil
}

func (a *App) initRouter() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceName))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))

	router.GET("/health", a.health.Handler())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/")
	if rl := a.Config.RateLimit; rl.Enabled {
		a.rateStore = ratelimit.NewStore(ratelimit.Config{
			RPS:             rl.RPS,
			Burst:           rl.Burst,
			CleanupInterval: rl.CleanupInterval,
			MaxAge:          rl.MaxAge,
		})
		api.Use(a.rateStore.Middleware())
		a.Logger.Infow("Rate limiting enabled", "rps", rl.RPS, "burst", rl.Burst)
	}

	stats.NewHandler(stats.NewService(a.repo, a.Logger), a.Logger).RegisterRoutes(api)

	a.router = router
}

// Run serves HTTP and drives the scheduler until ctx is cancelled, then shuts down.
func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(gCtx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.scheduler.Run(gCtx)
	})

	if a.rateStore != nil {
		g.Go(func() error {
			a.rateStore.RunCleanup(gCtx)
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	additionalShutdown := func(ctx context.Context) []error {
		var shutdownErrs []error

		shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
		defer cancel()

		if a.server != nil {
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				shutdownErrs = append(shutdownErrs, fmt.Errorf("HTTP server shutdown error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
				shutdownErrs = append(shutdownErrs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		return append(shutdownErrs, a.dbConnector.ShutdownDatabases(shutdownCtx, a.redisClient, a.db, a.mongoClient)...)
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}

// collectOnce runs one cycle outside the scheduler. A held lock is reported, not retried.
func (a *App) collectOnce(ctx context.Context) (collector.CycleResult, error) {
	res, err := a.collector.RunCycle(ctx)
	if errs.IsCycleInProgress(err) {
		a.Logger.WarnwCtx(ctx, "Another collection cycle is running, nothing collected")
	}
	return res, err
}
