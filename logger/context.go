package logger

import (
	"context"
	"sync/atomic"
)

// contextKey is the type for context keys to avoid collisions
type contextKey string

const (
	// httpCounterKey tracks the number of outbound HTTP attempts per request
	httpCounterKey contextKey = "http_attempt_counter"
	// httpElapsedKey tracks total time spent on outbound HTTP attempts per request
	httpElapsedKey contextKey = "http_elapsed_nanos"
)

// WithHTTPCounter creates a context that tracks outbound HTTP attempts and
// their total elapsed time. Wrap a request context with it before handing
// the context to the client; each attempt, including retries, is counted.
func WithHTTPCounter(ctx context.Context) context.Context {
	counter := int64(0)
	elapsed := int64(0)
	ctx = context.WithValue(ctx, httpCounterKey, &counter)
	ctx = context.WithValue(ctx, httpElapsedKey, &elapsed)
	return ctx
}

// IncrementHTTPCounter increments the outbound HTTP attempt counter when the
// context carries one.
func IncrementHTTPCounter(ctx context.Context) {
	if counter, ok := ctx.Value(httpCounterKey).(*int64); ok && counter != nil {
		atomic.AddInt64(counter, 1)
	}
}

// GetHTTPCounter returns the number of outbound HTTP attempts recorded on
// the context, or zero when the context carries no counter.
func GetHTTPCounter(ctx context.Context) int64 {
	if counter, ok := ctx.Value(httpCounterKey).(*int64); ok && counter != nil {
		return atomic.LoadInt64(counter)
	}
	return 0
}

// AddHTTPElapsed adds elapsed nanoseconds to the outbound HTTP time recorded
// on the context.
func AddHTTPElapsed(ctx context.Context, nanos int64) {
	if elapsed, ok := ctx.Value(httpElapsedKey).(*int64); ok && elapsed != nil {
		atomic.AddInt64(elapsed, nanos)
	}
}

// GetHTTPElapsed returns the total outbound HTTP time in nanoseconds recorded
// on the context, or zero when the context carries no tracker.
func GetHTTPElapsed(ctx context.Context) int64 {
	if elapsed, ok := ctx.Value(httpElapsedKey).(*int64); ok && elapsed != nil {
		return atomic.LoadInt64(elapsed)
	}
	return 0
}
