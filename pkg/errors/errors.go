package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrConfiguration      = NewError("CONFIGURATION_ERROR", "missing required input", http.StatusBadRequest)
	ErrValidation         = NewError("VALIDATION_ERROR", "validation failed", http.StatusBadRequest)
	ErrProvider           = NewError("PROVIDER_ERROR", "mail provider request failed", http.StatusBadGateway)
	ErrPersistence        = NewError("PERSISTENCE_ERROR", "persistence request failed", http.StatusInternalServerError)
	ErrCycleInProgress    = NewError("CYCLE_IN_PROGRESS", "a collection cycle is already running", http.StatusConflict)
	ErrInternal           = NewError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	ErrServiceUnavailable = NewError("SERVICE_UNAVAILABLE", "service unavailable", http.StatusServiceUnavailable)
)

type RetryableError interface {
	error
	IsRetryable() bool
}

type FatalError interface {
	error
	IsFatal() bool
}

type Error struct {
	Code      string
	Message   string
	Status    int
	Details   map[string]interface{}
	Cause     error
	retryable *bool
}

func NewError(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.detailMessage()

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) detailMessage() string {
	if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
		return detailMsg
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code, so sentinels work with errors.Is
// after WithCause/WithDetail copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) IsRetryable() bool {
	if e.retryable != nil {
		return *e.retryable
	}
	if e.Cause != nil {
		var retryableErr RetryableError
		if errors.As(e.Cause, &retryableErr) {
			return retryableErr.IsRetryable()
		}
		var fatalErr FatalError
		if errors.As(e.Cause, &fatalErr) {
			return !fatalErr.IsFatal()
		}
	}
	switch e.Code {
	case ErrValidation.Code, ErrConfiguration.Code, ErrCycleInProgress.Code:
		return false
	}
	return true
}

func (e *Error) IsFatal() bool {
	return !e.IsRetryable()
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	err.Details = details
	return &err
}

func (e *Error) WithMessage(message string) *Error {
	return e.WithDetail("message", message)
}

func (e *Error) AsRetryable() *Error {
	err := *e
	retryable := true
	err.retryable = &retryable
	return &err
}

func (e *Error) AsFatal() *Error {
	err := *e
	retryable := false
	err.retryable = &retryable
	return &err
}

func Wrap(err error, appErr *Error) *Error {
	if err == nil {
		return nil
	}
	return appErr.WithCause(err)
}

func hasCode(err error, code string) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsConfiguration(err error) bool { return hasCode(err, ErrConfiguration.Code) }

func IsValidation(err error) bool { return hasCode(err, ErrValidation.Code) }

func IsProvider(err error) bool { return hasCode(err, ErrProvider.Code) }

func IsPersistence(err error) bool { return hasCode(err, ErrPersistence.Code) }

func IsCycleInProgress(err error) bool { return hasCode(err, ErrCycleInProgress.Code) }

func ToHTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// ErrorResponse documents the error body for the API docs.
type ErrorResponse struct {
	Error string `json:"error" example:"No day specified in request, nothing to get"`
}

// ToErrorResponse renders the body returned to HTTP clients: {"error": <message>}.
// Server-side failures carry the underlying cause text so callers see the details.
func ToErrorResponse(err error) map[string]interface{} {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ErrInternal.WithCause(err)
	}

	msg := appErr.detailMessage()
	if appErr.Status >= http.StatusInternalServerError && appErr.Cause != nil {
		msg = appErr.Cause.Error()
	}

	return map[string]interface{}{
		"error": msg,
	}
}
