package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emailstats/internal/config"
	"emailstats/internal/window"
	errs "emailstats/pkg/errors"
)

func TestCircuitBreakerRepositoryDisabledPassesThrough(t *testing.T) {
	inner := newMemoryRepository()
	repo := NewCircuitBreakerRepository(inner, "stats-disabled", config.CircuitBreakerConfig{})

	rec := NewRecord(time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC), Counters{ReceivedHome: 1}, "c1")
	require.NoError(t, repo.Put(context.Background(), rec))

	w, err := window.ForDay("2024-03-10")
	require.NoError(t, err)
	got, err := repo.Query(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []Record{rec}, got)
	assert.Equal(t, "disabled", repo.State())
}

func TestCircuitBreakerRepositoryOpensAfterFailures(t *testing.T) {
	inner := newMemoryRepository()
	inner.queryErr = errors.New("timeout")
	repo := NewCircuitBreakerRepository(inner, "stats-open", config.CircuitBreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	})

	w, err := window.ForDay("2024-03-10")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := repo.Query(context.Background(), w)
		require.Error(t, err)
	}

	_, err = repo.Query(context.Background(), w)
	require.Error(t, err)
	assert.True(t, errs.IsPersistence(err))
	assert.Equal(t, "open", repo.State())
	assert.Len(t, inner.queried, 2)
}
