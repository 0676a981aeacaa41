// Package logger provides the structured logging facade used throughout the
// library, backed by zerolog and wired to mask sensitive values before they
// reach any sink.
package logger

import (
	"context"
	"time"
)

// Logger is the logging contract consumed by the REST client and its
// collaborators. It is satisfied by the zerolog-backed implementation
// returned by New and is narrow enough for tests to supply fakes.
type Logger interface {
	Debug() LogEvent
	Info() LogEvent
	Warn() LogEvent
	Error() LogEvent
	Fatal() LogEvent

	// WithContext returns a child logger bound to the request trace ID
	// carried by ctx, when one is present.
	WithContext(ctx context.Context) Logger

	// WithFields returns a child logger with fields attached to every
	// subsequent event. Sensitive values are masked on the way in.
	WithFields(fields map[string]any) Logger
}

// LogEvent accumulates fields for a single log line. Field methods return
// the event so calls chain; Msg or Msgf terminates the event.
type LogEvent interface {
	Msg(msg string)
	Msgf(format string, args ...any)
	Err(err error) LogEvent
	Str(key, value string) LogEvent
	Int(key string, value int) LogEvent
	Int64(key string, value int64) LogEvent
	Dur(key string, d time.Duration) LogEvent
	Interface(key string, i any) LogEvent
	Bytes(key string, val []byte) LogEvent
}
