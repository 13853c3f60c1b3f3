package logging

import (
	"context"
)

type contextKey string

const (
	TraceIDKey     = "trace_id"
	CycleIDKey     = "cycle_id"
	RequestIDKey   = "request_id"
	ServiceNameKey = "service_name"
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKey(TraceIDKey), traceID)
}

// WithCycleID tags every log line written during one collection cycle.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, contextKey(CycleIDKey), cycleID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey(RequestIDKey), requestID)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, contextKey(ServiceNameKey), serviceName)
}

func GetTraceID(ctx context.Context) string {
	return stringValue(ctx, TraceIDKey)
}

func GetCycleID(ctx context.Context) string {
	return stringValue(ctx, CycleIDKey)
}

func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

func GetServiceName(ctx context.Context) string {
	return stringValue(ctx, ServiceNameKey)
}

func stringValue(ctx context.Context, key string) string {
	if v, ok := ctx.Value(contextKey(key)).(string); ok {
		return v
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	for _, key := range []string{TraceIDKey, CycleIDKey, RequestIDKey, ServiceNameKey} {
		if v := stringValue(ctx, key); v != "" {
			fields = append(fields, key, v)
		}
	}

	return fields
}
