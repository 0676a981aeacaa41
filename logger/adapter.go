package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogEventAdapter adapts a zerolog event to the LogEvent interface,
// masking sensitive string and interface values as they are attached.
type LogEventAdapter struct {
	event  *zerolog.Event
	filter *SensitiveDataFilter
}

var _ LogEvent = (*LogEventAdapter)(nil)

func (a *LogEventAdapter) Msg(msg string) {
	a.event.Msg(msg)
}

func (a *LogEventAdapter) Msgf(format string, args ...any) {
	a.event.Msgf(format, args...)
}

func (a *LogEventAdapter) Err(err error) LogEvent {
	a.event = a.event.Err(err)
	return a
}

func (a *LogEventAdapter) Str(key, value string) LogEvent {
	if a.filter != nil {
		value = a.filter.FilterString(key, value)
	}
	a.event = a.event.Str(key, value)
	return a
}

func (a *LogEventAdapter) Int(key string, value int) LogEvent {
	a.event = a.event.Int(key, value)
	return a
}

func (a *LogEventAdapter) Int64(key string, value int64) LogEvent {
	a.event = a.event.Int64(key, value)
	return a
}

func (a *LogEventAdapter) Dur(key string, value time.Duration) LogEvent {
	a.event = a.event.Dur(key, value)
	return a
}

func (a *LogEventAdapter) Interface(key string, value any) LogEvent {
	if a.filter != nil {
		value = a.filter.FilterValue(key, value)
	}
	a.event = a.event.Interface(key, value)
	return a
}

func (a *LogEventAdapter) Bytes(key string, value []byte) LogEvent {
	a.event = a.event.Bytes(key, value)
	return a
}
