package health

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

const checkTimeout = 5 * time.Second

type Checker interface {
	Check(ctx context.Context) error
	Name() string
}

type Health struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type registered struct {
	checker  Checker
	optional bool
}

// CheckerRegistry aggregates dependency checks. A failing required check makes
// the service unhealthy; a failing optional one only degrades it.
type CheckerRegistry struct {
	checkers []registered
}

func NewCheckerRegistry() *CheckerRegistry {
	return &CheckerRegistry{}
}

func (r *CheckerRegistry) Register(checker Checker) {
	r.checkers = append(r.checkers, registered{checker: checker})
}

func (r *CheckerRegistry) RegisterOptional(checker Checker) {
	r.checkers = append(r.checkers, registered{checker: checker, optional: true})
}

func (r *CheckerRegistry) Check(ctx context.Context) Health {
	results := make(map[string]CheckResult, len(r.checkers))
	overall := StatusHealthy

	for _, reg := range r.checkers {
		result := CheckResult{Status: StatusHealthy, Timestamp: time.Now().UTC()}

		if err := reg.checker.Check(ctx); err != nil {
			result.Message = err.Error()
			if reg.optional {
				result.Status = StatusDegraded
				if overall == StatusHealthy {
					overall = StatusDegraded
				}
			} else {
				result.Status = StatusUnhealthy
				overall = StatusUnhealthy
			}
		}

		results[reg.checker.Name()] = result
	}

	return Health{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}

// Handler godoc
// @Summary Health check
// @Description Reports the status of the service and its dependencies
// @Tags health
// @Produce json
// @Success 200 {object} Health
// @Failure 503 {object} Health
// @Router /health [get]
func (r *CheckerRegistry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := r.Check(c.Request.Context())
		status := http.StatusOK
		if h.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, h)
	}
}

// CheckFunc adapts a plain function into a named Checker.
type CheckFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func NewCheckFunc(name string, fn func(ctx context.Context) error) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

func (c *CheckFunc) Name() string { return c.name }

func (c *CheckFunc) Check(ctx context.Context) error { return c.fn(ctx) }

type PostgreSQLChecker struct {
	db *sql.DB
}

func NewPostgreSQLChecker(db *sql.DB) *PostgreSQLChecker {
	return &PostgreSQLChecker{db: db}
}

func (c *PostgreSQLChecker) Name() string {
	return "postgresql"
}

func (c *PostgreSQLChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgresql ping failed: %w", err)
	}
	return nil
}

type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string {
	return "redis"
}

func (c *RedisChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

type MongoDBChecker struct {
	client *mongo.Client
}

func NewMongoDBChecker(client *mongo.Client) *MongoDBChecker {
	return &MongoDBChecker{client: client}
}

func (c *MongoDBChecker) Name() string {
	return "mongodb"
}

func (c *MongoDBChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := c.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}
