package stats

import (
	"context"
	"fmt"

	"emailstats/internal/config"
	"emailstats/internal/window"
	"emailstats/pkg/circuitbreaker"
	errs "emailstats/pkg/errors"
)

type CircuitBreakerRepository struct {
	repo Repository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(repo Repository, name string, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	if !cfg.Enabled {
		return &CircuitBreakerRepository{repo: repo}
	}

	cbConfig := circuitbreaker.DefaultConfig(name).
		WithThresholds(cfg.MaxRequests, cfg.Interval, cfg.Timeout, cfg.FailureRatio, cfg.MinRequests)

	return &CircuitBreakerRepository{
		repo: repo,
		cb:   circuitbreaker.NewWrapper(cbConfig),
	}
}

func (r *CircuitBreakerRepository) Put(ctx context.Context, rec Record) error {
	if r.cb == nil {
		return r.repo.Put(ctx, rec)
	}

	_, err := r.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return nil, r.repo.Put(ctx, rec)
	})
	return r.wrap(err)
}

func (r *CircuitBreakerRepository) Query(ctx context.Context, w window.Window) ([]Record, error) {
	if r.cb == nil {
		return r.repo.Query(ctx, w)
	}

	result, err := r.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return r.repo.Query(ctx, w)
	})
	if err != nil {
		return nil, r.wrap(err)
	}

	records, ok := result.([]Record)
	if !ok {
		return nil, errs.ErrPersistence.WithCause(fmt.Errorf("repository returned invalid result type"))
	}
	return records, nil
}

func (r *CircuitBreakerRepository) State() string {
	if r.cb == nil {
		return "disabled"
	}
	return r.cb.State().String()
}

func (r *CircuitBreakerRepository) wrap(err error) error {
	if err == nil {
		return nil
	}
	if r.cb.IsOpen() && !errs.IsPersistence(err) {
		return errs.ErrPersistence.WithCause(fmt.Errorf("circuit breaker is open for %s: %w", r.cb.Name(), err))
	}
	return err
}
