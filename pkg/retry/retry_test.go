package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnFatalError(t *testing.T) {
	calls := 0
	cause := errors.New("bad request")
	err := Retry(context.Background(), fastPolicy(5), func() error {
		calls++
		return NewFatalError(cause)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	var retried []int
	err := RetryWithCallback(context.Background(), fastPolicy(3), func() error {
		calls++
		return errors.New("still failing")
	}, func(attempt int, err error, nextDelay time.Duration) {
		retried = append(retried, attempt)
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, fastPolicy(5), func() error {
		calls++
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}

func TestCalculateBackoffDuration(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, CalculateBackoffDuration(1, 100*time.Millisecond, 2, time.Second))
	assert.Equal(t, time.Second, CalculateBackoffDuration(10, 100*time.Millisecond, 2, time.Second))
}
