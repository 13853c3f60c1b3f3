package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "configuration error uses detail message",
			err:        ErrConfiguration.WithMessage("No day specified in request, nothing to get"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "No day specified in request, nothing to get",
		},
		{
			name:       "validation error keeps default message without details",
			err:        ErrValidation,
			wantStatus: http.StatusBadRequest,
			wantBody:   "validation failed",
		},
		{
			name:       "persistence error exposes cause",
			err:        ErrPersistence.WithCause(errors.New("connection refused")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "connection refused",
		},
		{
			name:       "foreign error becomes internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, ToHTTPStatus(tt.err))
			assert.Equal(t, map[string]interface{}{"error": tt.wantBody}, ToErrorResponse(tt.err))
		})
	}
}

func TestSentinelMatching(t *testing.T) {
	wrapped := fmt.Errorf("cycle: %w", ErrProvider.WithCause(errors.New("503")))

	assert.True(t, errors.Is(wrapped, ErrProvider))
	assert.True(t, IsProvider(wrapped))
	assert.False(t, IsPersistence(wrapped))
	assert.False(t, errors.Is(wrapped, ErrPersistence))
}

func TestRetryability(t *testing.T) {
	assert.True(t, ErrProvider.IsRetryable())
	assert.False(t, ErrValidation.IsRetryable())
	assert.False(t, ErrConfiguration.IsRetryable())
	assert.True(t, ErrProvider.AsFatal().IsFatal())
	assert.True(t, ErrValidation.AsRetryable().IsRetryable())
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	_ = ErrValidation.WithMessage("hour out of range")
	assert.Empty(t, ErrValidation.Details)
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))

	err := RecoverPanic("kaboom")
	assert.True(t, errors.Is(err, ErrInternal))
	assert.Contains(t, err.Error(), "panic: kaboom")
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrProvider))

	err := Wrap(context.Canceled, ErrProvider.WithMessage("aggregation interrupted"))
	assert.True(t, IsProvider(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, ErrProvider.Cause)
}
