package logger

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/restmark/go-resilience/trace"
)

// ZeroLogger implements Logger on top of zerolog.
type ZeroLogger struct {
	zlog   zerolog.Logger
	filter *SensitiveDataFilter
}

var _ Logger = (*ZeroLogger)(nil)

var callerMarshalOnce sync.Once

// New creates a zerolog-backed logger at the given level ("trace", "debug",
// "info", "warn", "error", "fatal"; unknown values fall back to info). When
// pretty is true, output is rendered for human readability instead of JSON.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithFilter(level, pretty, DefaultFilterConfig())
}

// NewWithFilter is New with a custom sensitive-data filter configuration.
func NewWithFilter(level string, pretty bool, filterConfig FilterConfig) *ZeroLogger {
	callerMarshalOnce.Do(func() {
		zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
			base := filepath.Base(file)
			if parent := filepath.Base(filepath.Dir(file)); parent != "." && parent != "" {
				return parent + "/" + base + ":" + strconv.Itoa(line)
			}
			return base + ":" + strconv.Itoa(line)
		}
	})

	var zl zerolog.Logger
	if pretty {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		zl = zerolog.New(os.Stdout)
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zl = zl.Level(lvl).With().Timestamp().CallerWithSkipFrameCount(3).Logger()

	return &ZeroLogger{zlog: zl, filter: NewSensitiveDataFilter(filterConfig)}
}

// WithContext returns a logger bound to the trace ID carried by ctx. When
// ctx has no trace ID the receiver is returned unchanged.
func (l *ZeroLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	id, ok := trace.IDFromContext(ctx)
	if !ok {
		return l
	}
	child := l.zlog.With().Str("request_id", id).Logger()
	return &ZeroLogger{zlog: child, filter: l.filter}
}

// WithFields returns a logger with fields attached to every subsequent
// event. Sensitive values are masked before they are bound.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	child := l.zlog.With().Fields(l.filter.FilterFields(fields)).Logger()
	return &ZeroLogger{zlog: child, filter: l.filter}
}

func (l *ZeroLogger) Debug() LogEvent { return l.adapt(l.zlog.Debug()) }
func (l *ZeroLogger) Info() LogEvent  { return l.adapt(l.zlog.Info()) }
func (l *ZeroLogger) Warn() LogEvent  { return l.adapt(l.zlog.Warn()) }
func (l *ZeroLogger) Error() LogEvent { return l.adapt(l.zlog.Error()) }
func (l *ZeroLogger) Fatal() LogEvent { return l.adapt(l.zlog.Fatal()) }

func (l *ZeroLogger) adapt(e *zerolog.Event) LogEvent {
	return &LogEventAdapter{event: e, filter: l.filter}
}
