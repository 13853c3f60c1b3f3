package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"emailstats/pkg/metrics"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Config struct {
	RPS             float64
	Burst           int
	CleanupInterval time.Duration
	MaxAge          time.Duration
}

func DefaultConfig() Config {
	return Config{
		RPS:             10.0,
		Burst:           20,
		CleanupInterval: 5 * time.Minute,
		MaxAge:          10 * time.Minute,
	}
}

// Store keeps one token bucket per client IP and forgets idle clients.
type Store struct {
	cfg      Config
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	now      func() time.Time
}

func NewStore(cfg Config) *Store {
	def := DefaultConfig()
	if cfg.RPS <= 0 {
		cfg.RPS = def.RPS
	}
	if cfg.Burst < 1 {
		cfg.Burst = def.Burst
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	return &Store{
		cfg:      cfg,
		limiters: make(map[string]*clientLimiter),
		now:      time.Now,
	}
}

// Allow reports whether key may proceed and how many tokens remain.
func (s *Store) Allow(key string) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cl, ok := s.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(s.cfg.RPS), s.cfg.Burst)}
		s.limiters[key] = cl
	}
	cl.lastSeen = s.now()

	if !cl.limiter.AllowN(cl.lastSeen, 1) {
		return false, 0
	}
	remaining := int(cl.limiter.TokensAt(cl.lastSeen))
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining
}

// Cleanup drops clients idle for longer than MaxAge.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for key, cl := range s.limiters {
		if now.Sub(cl.lastSeen) > s.cfg.MaxAge {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}

// RunCleanup evicts idle clients every CleanupInterval until ctx is done.
func (s *Store) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

func (s *Store) Middleware() gin.HandlerFunc {
	limit := strconv.Itoa(int(s.cfg.RPS))

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = c.RemoteIP()
		}

		allowed, remaining := s.Allow(clientIP)
		c.Header("X-RateLimit-Limit", limit)

		if !allowed {
			metrics.RateLimitRequestsTotal.WithLabelValues("limited").Inc()
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		metrics.RateLimitRequestsTotal.WithLabelValues("allowed").Inc()
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
