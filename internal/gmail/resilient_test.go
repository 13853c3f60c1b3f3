package gmail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emailstats/internal/logger"
	"emailstats/pkg/circuitbreaker"
	errs "emailstats/pkg/errors"
	"emailstats/pkg/retry"
)

type scriptedClient struct {
	mu       sync.Mutex
	listErrs []error
	calls    int
}

func (s *scriptedClient) List(ctx context.Context, q Query, pageToken string, pageSize int) (ListPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.listErrs) > 0 {
		err := s.listErrs[0]
		s.listErrs = s.listErrs[1:]
		if err != nil {
			return ListPage{}, err
		}
	}
	return ListPage{IDs: []MessageID{"a"}}, nil
}

func (s *scriptedClient) GetHeaders(ctx context.Context, id MessageID) ([]Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return []Header{{Name: HeaderFrom, Value: string(id)}}, nil
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, Multiplier: 2}
}

func TestResilientRetriesRetryableProviderErrors(t *testing.T) {
	transient := errs.ErrProvider.WithCause(errors.New("503")).AsRetryable()
	inner := &scriptedClient{listErrs: []error{transient, transient}}
	r := NewResilient(inner, logger.NopLogger(), WithRetryPolicy(fastPolicy()))

	page, err := r.List(context.Background(), Query{Raw: "q"}, "", 10)
	require.NoError(t, err)
	assert.Equal(t, []MessageID{"a"}, page.IDs)
	assert.Equal(t, 3, inner.calls)
}

func TestResilientDoesNotRetryFatalErrors(t *testing.T) {
	rejected := errs.ErrProvider.WithCause(errors.New("404")).AsFatal()
	inner := &scriptedClient{listErrs: []error{rejected}}
	r := NewResilient(inner, logger.NopLogger(), WithRetryPolicy(fastPolicy()))

	_, err := r.List(context.Background(), Query{Raw: "q"}, "", 10)
	require.Error(t, err)
	assert.True(t, errs.IsProvider(err))
	assert.Equal(t, 1, inner.calls)
}

func TestResilientOpenBreakerFailsFast(t *testing.T) {
	transient := errs.ErrProvider.WithCause(errors.New("500")).AsRetryable()
	inner := &scriptedClient{listErrs: []error{transient, transient, transient, transient, transient}}

	cfg := BreakerConfig("gmail-test").WithThresholds(1, time.Minute, time.Minute, 0.5, 2)
	cb := circuitbreaker.NewWrapper(cfg)
	single := retry.Policy{MaxAttempts: 1, InitialInterval: time.Millisecond, Multiplier: 2}
	r := NewResilient(inner, logger.NopLogger(), WithRetryPolicy(single), WithCircuitBreaker(cb))

	for i := 0; i < 2; i++ {
		_, err := r.List(context.Background(), Query{Raw: "q"}, "", 10)
		require.Error(t, err)
	}
	require.True(t, cb.IsOpen())

	_, err := r.List(context.Background(), Query{Raw: "q"}, "", 10)
	require.Error(t, err)
	assert.True(t, errs.IsProvider(err))
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerIgnoresFatalErrors(t *testing.T) {
	cfg := BreakerConfig("gmail-fatal")
	assert.True(t, cfg.IsSuccessful(nil))
	assert.True(t, cfg.IsSuccessful(errs.ErrProvider.AsFatal()))
	assert.False(t, cfg.IsSuccessful(errs.ErrProvider.AsRetryable()))
	assert.False(t, cfg.IsSuccessful(errors.New("dial tcp: refused")))
}

func TestResilientRateLimitHonoursContext(t *testing.T) {
	inner := &scriptedClient{}
	r := NewResilient(inner, logger.NopLogger(), WithRetryPolicy(fastPolicy()), WithRateLimit(0.001, 1))

	_, err := r.GetHeaders(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.GetHeaders(ctx, "second")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
