package collector

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emailstats/internal/logger"
	errs "emailstats/pkg/errors"
)

type countingRunner struct {
	calls int32
	err   error
}

func (r *countingRunner) RunCycle(ctx context.Context) (CycleResult, error) {
	atomic.AddInt32(&r.calls, 1)
	return CycleResult{CycleID: "c"}, r.err
}

func TestNewSchedulerRejectsInvalidSpec(t *testing.T) {
	_, err := NewScheduler("0 * * * *", &countingRunner{}, false, logger.NopLogger())
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
}

func TestSchedulerNextIsTopOfHour(t *testing.T) {
	s, err := NewScheduler("0 0 * * * *", &countingRunner{}, false, logger.NopLogger())
	require.NoError(t, err)

	next := s.Next(time.Date(2024, 3, 10, 4, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC), next)

	next = s.Next(time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), next)
}

func TestSchedulerRunOnStartAndStop(t *testing.T) {
	runner := &countingRunner{err: errs.ErrCycleInProgress}
	s, err := NewScheduler("0 0 * * * *", runner, true, logger.NopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&runner.calls) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerFiresOnSchedule(t *testing.T) {
	runner := &countingRunner{}
	s, err := NewScheduler("* * * * * *", runner, false, logger.NopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&runner.calls) >= 1 }, 3*time.Second, 20*time.Millisecond)
}
