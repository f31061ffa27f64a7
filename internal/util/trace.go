package util

import (
	"context"

	"github.com/google/uuid"
)

// contextKey avoids collisions with other packages' context keys.
type contextKey string

const traceIDKey contextKey = "traceID"

// NewTraceID generates a random, unique trace id for one order's
// journey through the FIFO, dispatcher and station.
func NewTraceID() string {
	return uuid.NewString()
}

// ContextWithTraceID injects a trace id into ctx.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext extracts a trace id previously injected.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(traceIDKey).(string)
	return traceID, ok
}
