package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateTraceID returns a new random run id
func GenerateTraceID() string {
	return uuid.NewString()
}

// EnsureTraceID returns ctx unchanged when it already carries a run id and
// a child context with a new one otherwise.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, GenerateTraceID())
}

// LoggerWithContext returns the process logger with the run id of ctx
// bound as an attribute, so that records logged without a context keep it.
func LoggerWithContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	id := GetTraceID(ctx)
	if id == "" {
		return logger
	}

	th, ok := logger.Handler().(*traceHandler)
	if !ok {
		return logger.With(traceAttr, id)
	}
	return slog.New(&traceHandler{
		Handler: th.Handler.WithAttrs([]slog.Attr{slog.String(traceAttr, id)}),
		bound:   true,
	})
}
