package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func fail() (interface{}, error) { return nil, errBackend }

func TestWrapperOpensAfterThreshold(t *testing.T) {
	cfg := DefaultConfig("test-open").WithThresholds(1, time.Minute, time.Minute, 0.5, 2)
	w := NewWrapper(cfg)
	ctx := context.Background()

	_, err := w.ExecuteWithContext(ctx, fail)
	require.ErrorIs(t, err, errBackend)
	assert.False(t, w.IsOpen())

	_, err = w.ExecuteWithContext(ctx, fail)
	require.ErrorIs(t, err, errBackend)
	assert.True(t, w.IsOpen())

	_, err = w.ExecuteWithContext(ctx, func() (interface{}, error) { return "ok", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestWrapperIsSuccessfulKeepsCircuitClosed(t *testing.T) {
	cfg := DefaultConfig("test-successful").WithThresholds(1, time.Minute, time.Minute, 0.5, 1)
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, errBackend) }
	w := NewWrapper(cfg)

	for i := 0; i < 5; i++ {
		_, err := w.ExecuteWithContext(context.Background(), fail)
		require.ErrorIs(t, err, errBackend)
	}
	assert.Equal(t, gobreaker.StateClosed, w.State())
}

func TestWrapperSkipsCancelledContext(t *testing.T) {
	w := NewWrapper(DefaultConfig("test-cancelled"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := w.ExecuteWithContext(ctx, func() (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.Equal(t, "test-cancelled", w.Name())
}
