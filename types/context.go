package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyTraceID   contextKey = "trace_id"
	keySessionID contextKey = "session_id"
	keyRound     contextKey = "round"
)

// WithTraceID adds a caller-supplied correlation ID to the context. The
// engine logs it alongside the session it starts.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, keyTraceID, traceID)
}

// TraceID extracts the correlation ID from the context.
func TraceID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyTraceID).(string)
	return v, ok && v != ""
}

// WithSessionID adds the running session's ID to the context. The engine
// sets it before any provider call so provider implementations can
// correlate their own logs with the session.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, keySessionID, sessionID)
}

// SessionID extracts the session ID from the context.
func SessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keySessionID).(string)
	return v, ok && v != ""
}

// WithRound adds the current deliberation round to the context. The
// engine sets it before each round's provider fan-out.
func WithRound(ctx context.Context, round int) context.Context {
	return context.WithValue(ctx, keyRound, round)
}

// Round extracts the deliberation round from the context. Rounds are
// numbered from 1; zero reads as absent.
func Round(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(keyRound).(int)
	return v, ok && v > 0
}
