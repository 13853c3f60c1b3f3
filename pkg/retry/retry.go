package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type RetryableError interface {
	error
	IsRetryable() bool
}

type FatalError interface {
	error
	IsFatal() bool
}

type fatalError struct {
	err error
}

func (e *fatalError) Error() string {
	return e.err.Error()
}

func (e *fatalError) IsFatal() bool {
	return true
}

func (e *fatalError) Unwrap() error {
	return e.err
}

func NewFatalError(err error) FatalError {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  time.Minute,
	}
}

// OnRetry is invoked before sleeping between two attempts.
type OnRetry func(attempt int, err error, nextDelay time.Duration)

func Retry(ctx context.Context, policy Policy, fn func() error) error {
	return RetryWithCallback(ctx, policy, fn, nil)
}

// RetryWithCallback runs fn until it succeeds, returns a fatal error, the context
// ends or the policy is exhausted. The last error is returned unwrapped.
func RetryWithCallback(ctx context.Context, policy Policy, fn func() error, onRetry OnRetry) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.Multiplier <= 0 {
		policy.Multiplier = 2.0
	}

	var b backoff.BackOff
	if policy.MaxElapsedTime > 0 {
		b = ExponentialBackoffWithMaxElapsed(
			policy.InitialInterval,
			policy.MaxInterval,
			policy.MaxElapsedTime,
			policy.Multiplier,
		)
	} else {
		b = ExponentialBackoff(
			policy.InitialInterval,
			policy.MaxInterval,
			policy.Multiplier,
		)
	}

	b = backoff.WithContext(b, ctx)
	b = backoff.WithMaxRetries(b, uint64(policy.MaxAttempts-1))

	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}

		if isFatal(err) {
			return backoff.Permanent(err)
		}

		if onRetry != nil && attempt < policy.MaxAttempts {
			nextDelay := CalculateBackoffDuration(attempt, policy.InitialInterval, policy.Multiplier, policy.MaxInterval)
			onRetry(attempt, err, nextDelay)
		}

		return err
	}

	err := backoff.Retry(operation, b)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}

func isFatal(err error) bool {
	var fatalErr FatalError
	if errors.As(err, &fatalErr) && fatalErr.IsFatal() {
		return true
	}
	var retryableErr RetryableError
	if errors.As(err, &retryableErr) {
		return !retryableErr.IsRetryable()
	}
	return false
}
