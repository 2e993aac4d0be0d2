package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

// TraceIDContextKey is the context key the log handler reads trace_id from
const TraceIDContextKey contextKey = "trace_id"

// WithTraceID tags ctx so every log line written with it carries traceID
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID returns the trace ID carried by ctx, or ""
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return traceID
	}
	return ""
}

// NewTraceID returns a fresh UUID v4 trace ID
func NewTraceID() string {
	return uuid.New().String()
}

// EnsureTraceID keeps an existing trace ID and otherwise assigns one.
// HTTP requests get theirs from the RequestID middleware; CLI runs call this.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, NewTraceID())
}

// WithComponent scopes a logger to a component. A nil logger falls back to
// slog.Default.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("component", component))
}
