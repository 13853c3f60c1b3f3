package gmail

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"emailstats/internal/logger"
	"emailstats/pkg/circuitbreaker"
	errs "emailstats/pkg/errors"
	"emailstats/pkg/metrics"
	"emailstats/pkg/retry"
)

// Resilient paces, retries and circuit-breaks calls to another Client.
type Resilient struct {
	next    Client
	limiter *rate.Limiter
	breaker *circuitbreaker.Wrapper
	policy  retry.Policy
	logger  logger.Logger
}

type ResilientOption func(*Resilient)

// WithRateLimit caps outgoing calls at rps with the given burst. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) ResilientOption {
	return func(r *Resilient) {
		if rps <= 0 {
			r.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithCircuitBreaker(cb *circuitbreaker.Wrapper) ResilientOption {
	return func(r *Resilient) {
		r.breaker = cb
	}
}

func WithRetryPolicy(p retry.Policy) ResilientOption {
	return func(r *Resilient) {
		r.policy = p
	}
}

func NewResilient(next Client, log logger.Logger, opts ...ResilientOption) *Resilient {
	r := &Resilient{
		next:   next,
		policy: retry.DefaultPolicy(),
		logger: log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BreakerConfig returns a breaker configuration that only counts retryable
// provider failures, so rejected ids do not open the circuit.
func BreakerConfig(name string) circuitbreaker.Config {
	cfg := circuitbreaker.DefaultConfig(name)
	cfg.IsSuccessful = func(err error) bool {
		if err == nil {
			return true
		}
		var appErr *errs.Error
		if errors.As(err, &appErr) {
			return appErr.IsFatal()
		}
		return false
	}
	return cfg
}

func (r *Resilient) List(ctx context.Context, q Query, pageToken string, pageSize int) (ListPage, error) {
	var page ListPage
	err := r.do(ctx, "list", func(ctx context.Context) error {
		p, err := r.next.List(ctx, q, pageToken, pageSize)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	return page, err
}

func (r *Resilient) GetHeaders(ctx context.Context, id MessageID) ([]Header, error) {
	var headers []Header
	err := r.do(ctx, "get", func(ctx context.Context) error {
		h, err := r.next.GetHeaders(ctx, id)
		if err != nil {
			return err
		}
		headers = h
		return nil
	})
	return headers, err
}

func (r *Resilient) do(ctx context.Context, op string, fn func(context.Context) error) error {
	attempt := func() error {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return errs.ErrProvider.WithCause(err).WithDetail("operation", op).AsFatal()
			}
		}

		start := time.Now()
		err := r.execute(ctx, fn)
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.ObserveGmailRequest(op, status, time.Since(start))

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return errs.ErrProvider.WithCause(err).WithDetail("operation", op).AsFatal()
		}
		return err
	}

	onRetry := func(n int, err error, next time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues("gmail", op).Inc()
		r.logger.WarnwCtx(ctx, "Retrying gmail request",
			"operation", op,
			"attempt", n,
			"next_delay", next,
			"error", err,
		)
	}

	return retry.RetryWithCallback(ctx, r.policy, attempt, onRetry)
}

func (r *Resilient) execute(ctx context.Context, fn func(context.Context) error) error {
	if r.breaker == nil {
		return fn(ctx)
	}
	_, err := r.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		return nil, fn(ctx)
	})
	return err
}
