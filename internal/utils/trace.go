package utils

import "context"

type traceIDKey struct{}

// WithTraceID stores a trace id in ctx. Outgoing backend requests made with
// ctx reuse it instead of generating a new one.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace id stored by WithTraceID.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(traceIDKey{}).(string)
	return traceID, ok && traceID != ""
}
