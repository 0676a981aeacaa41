package httpclient

import (
	"context"
	nethttp "net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restmark/go-resilience/logger"
	"github.com/restmark/go-resilience/retry"
)

// fakeLogEvent records every field handed to it so tests can assert on the
// exact shape of a log line.
type fakeLogEvent struct {
	sink   *fakeLogger
	level  string
	msg    string
	fields map[string]any
}

func (e *fakeLogEvent) Msg(msg string) {
	e.msg = msg
	e.sink.record(e)
}

func (e *fakeLogEvent) Msgf(format string, _ ...any) {
	e.msg = format
	e.sink.record(e)
}

func (e *fakeLogEvent) Err(err error) logger.LogEvent {
	e.fields["error"] = err
	return e
}

func (e *fakeLogEvent) Str(key, value string) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *fakeLogEvent) Int(key string, value int) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *fakeLogEvent) Int64(key string, value int64) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *fakeLogEvent) Dur(key string, d time.Duration) logger.LogEvent {
	e.fields[key] = d
	return e
}

func (e *fakeLogEvent) Interface(key string, i any) logger.LogEvent {
	e.fields[key] = i
	return e
}

func (e *fakeLogEvent) Bytes(key string, val []byte) logger.LogEvent {
	e.fields[key] = val
	return e
}

type fakeLogger struct {
	mu     sync.Mutex
	events []*fakeLogEvent
}

func (l *fakeLogger) newEvent(level string) logger.LogEvent {
	return &fakeLogEvent{sink: l, level: level, fields: make(map[string]any)}
}

func (l *fakeLogger) record(e *fakeLogEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *fakeLogger) Debug() logger.LogEvent { return l.newEvent("debug") }
func (l *fakeLogger) Info() logger.LogEvent  { return l.newEvent("info") }
func (l *fakeLogger) Warn() logger.LogEvent  { return l.newEvent("warn") }
func (l *fakeLogger) Error() logger.LogEvent { return l.newEvent("error") }
func (l *fakeLogger) Fatal() logger.LogEvent { return l.newEvent("fatal") }

func (l *fakeLogger) WithContext(_ context.Context) logger.Logger { return l }
func (l *fakeLogger) WithFields(_ map[string]any) logger.Logger   { return l }

func (l *fakeLogger) byLevel(level string) []*fakeLogEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*fakeLogEvent
	for _, e := range l.events {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

func (l *fakeLogger) byMessage(msg string) []*fakeLogEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*fakeLogEvent
	for _, e := range l.events {
		if e.msg == msg {
			out = append(out, e)
		}
	}
	return out
}

func newLoggingClient(t *testing.T, configure func(*Builder) *Builder) (*client, *fakeLogger) {
	t.Helper()
	fake := &fakeLogger{}
	b := NewBuilder(fake)
	if configure != nil {
		b = configure(b)
	}
	return b.Build().(*client), fake
}

func newLoggedRequest(t *testing.T, method, target string, headers map[string]string) *nethttp.Request {
	t.Helper()
	req, err := nethttp.NewRequest(method, target, nethttp.NoBody)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestLogRequest(t *testing.T) {
	t.Run("info fields with headers and body", func(t *testing.T) {
		c, fake := newLoggingClient(t, nil)
		req := newLoggedRequest(t, nethttp.MethodPost, "https://api.example.com/items", map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		})

		c.logRequest(req, []byte(`{"name":"x"}`), "trace-1")

		infos := fake.byLevel("info")
		require.Len(t, infos, 1)
		e := infos[0]
		assert.Equal(t, logMsgRequest, e.msg)
		assert.Equal(t, "outbound", e.fields["direction"])
		assert.Equal(t, nethttp.MethodPost, e.fields["method"])
		assert.Equal(t, "https://api.example.com/items", e.fields["url"])
		assert.Equal(t, "trace-1", e.fields["request_id"])
		assert.Equal(t, 2, e.fields["header_count"])
		assert.Equal(t, 12, e.fields["body_size"])
	})

	t.Run("zero counts omitted", func(t *testing.T) {
		c, fake := newLoggingClient(t, nil)
		req := newLoggedRequest(t, nethttp.MethodGet, "https://api.example.com/items", nil)

		c.logRequest(req, nil, "trace-2")

		infos := fake.byLevel("info")
		require.Len(t, infos, 1)
		_, hasHeaderCount := infos[0].fields["header_count"]
		_, hasBodySize := infos[0].fields["body_size"]
		assert.False(t, hasHeaderCount)
		assert.False(t, hasBodySize)
	})

	t.Run("no debug event when payload logging disabled", func(t *testing.T) {
		c, fake := newLoggingClient(t, nil)
		req := newLoggedRequest(t, nethttp.MethodPost, "https://api.example.com/items", nil)

		c.logRequest(req, []byte("payload"), "trace-3")

		assert.Empty(t, fake.byLevel("debug"))
	})

	t.Run("debug payload event", func(t *testing.T) {
		c, fake := newLoggingClient(t, func(b *Builder) *Builder {
			return b.WithPayloadLogging(true)
		})
		req := newLoggedRequest(t, nethttp.MethodPost, "https://api.example.com/items", map[string]string{
			"Content-Type": "application/json",
		})

		c.logRequest(req, []byte(`{"name":"x"}`), "trace-4")

		debugs := fake.byLevel("debug")
		require.Len(t, debugs, 1)
		e := debugs[0]
		assert.Equal(t, logMsgRequest, e.msg)
		assert.Equal(t, 12, e.fields["body_size"])
		assert.Equal(t, "false", e.fields["body_truncated"])
		assert.Equal(t, []byte(`{"name":"x"}`), e.fields["body_preview"])
		headers, ok := e.fields["headers"].(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "application/json", headers["Content-Type"])
	})

	t.Run("payload preview truncated to limit", func(t *testing.T) {
		c, fake := newLoggingClient(t, func(b *Builder) *Builder {
			return b.WithPayloadLogging(true).WithMaxPayloadLogBytes(5)
		})
		req := newLoggedRequest(t, nethttp.MethodPost, "https://api.example.com/items", nil)

		c.logRequest(req, []byte("hello world"), "trace-5")

		debugs := fake.byLevel("debug")
		require.Len(t, debugs, 1)
		e := debugs[0]
		assert.Equal(t, 11, e.fields["body_size"])
		assert.Equal(t, "true", e.fields["body_truncated"])
		assert.Equal(t, []byte("hello"), e.fields["body_preview"])
	})
}

func TestLogResponse(t *testing.T) {
	t.Run("info fields", func(t *testing.T) {
		c, fake := newLoggingClient(t, nil)
		resp := &Response{
			StatusCode: nethttp.StatusOK,
			Body:       []byte(`{"id":7}`),
			Headers:    nethttp.Header{"Content-Type": []string{"application/json"}},
			Stats:      Stats{ElapsedTime: 42 * time.Millisecond, CallCount: 3},
		}

		c.logResponse(resp, "trace-6")

		infos := fake.byLevel("info")
		require.Len(t, infos, 1)
		e := infos[0]
		assert.Equal(t, logMsgResponse, e.msg)
		assert.Equal(t, "inbound", e.fields["direction"])
		assert.Equal(t, nethttp.StatusOK, e.fields["status"])
		assert.Equal(t, 42*time.Millisecond, e.fields["elapsed"])
		assert.Equal(t, int64(3), e.fields["call_count"])
		assert.Equal(t, "trace-6", e.fields["request_id"])
		assert.Equal(t, 8, e.fields["body_size"])
	})

	t.Run("empty body omits size", func(t *testing.T) {
		c, fake := newLoggingClient(t, nil)

		c.logResponse(&Response{StatusCode: nethttp.StatusNoContent}, "trace-7")

		infos := fake.byLevel("info")
		require.Len(t, infos, 1)
		_, hasBodySize := infos[0].fields["body_size"]
		assert.False(t, hasBodySize)
	})

	t.Run("debug payload event", func(t *testing.T) {
		c, fake := newLoggingClient(t, func(b *Builder) *Builder {
			return b.WithPayloadLogging(true)
		})
		resp := &Response{
			StatusCode: nethttp.StatusOK,
			Body:       []byte("response body"),
			Headers:    nethttp.Header{"X-Server": []string{"a", "b"}},
		}

		c.logResponse(resp, "trace-8")

		debugs := fake.byLevel("debug")
		require.Len(t, debugs, 1)
		e := debugs[0]
		assert.Equal(t, logMsgResponse, e.msg)
		assert.Equal(t, []byte("response body"), e.fields["body_preview"])
		assert.Equal(t, "false", e.fields["body_truncated"])
		headers, ok := e.fields["headers"].(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "a, b", headers["X-Server"])
	})
}

func TestLogRetry(t *testing.T) {
	t.Run("status outcome", func(t *testing.T) {
		c, fake := newLoggingClient(t, nil)

		c.logRetry(nethttp.MethodGet, "https://api.example.com/items", "trace-9", 0, 250*time.Millisecond, retry.Outcome{
			StatusCode: nethttp.StatusServiceUnavailable,
		})

		warns := fake.byLevel("warn")
		require.Len(t, warns, 1)
		e := warns[0]
		assert.Equal(t, logMsgRetry, e.msg)
		assert.Equal(t, nethttp.MethodGet, e.fields["method"])
		assert.Equal(t, "https://api.example.com/items", e.fields["url"])
		assert.Equal(t, 1, e.fields["attempt"])
		assert.Equal(t, 250*time.Millisecond, e.fields["delay"])
		assert.Equal(t, "trace-9", e.fields["request_id"])
		assert.Equal(t, nethttp.StatusServiceUnavailable, e.fields["status"])
	})

	t.Run("error outcome", func(t *testing.T) {
		c, fake := newLoggingClient(t, nil)

		c.logRetry(nethttp.MethodGet, "https://api.example.com/items", "", 1, time.Second, retry.Outcome{
			Err: assert.AnError,
		})

		warns := fake.byLevel("warn")
		require.Len(t, warns, 1)
		e := warns[0]
		assert.Equal(t, 2, e.fields["attempt"])
		assert.Equal(t, assert.AnError, e.fields["error"])
		_, hasRequestID := e.fields["request_id"]
		_, hasStatus := e.fields["status"]
		assert.False(t, hasRequestID)
		assert.False(t, hasStatus)
	})
}

func TestLoggingAcrossRetries(t *testing.T) {
	var calls atomic.Int32
	srv := newIPv4TestServer(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(nethttp.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(nethttp.StatusOK)
	}))

	fake := &fakeLogger{}
	c := NewBuilder(fake).WithRetry(fastRetry(2)).Build()

	resp, err := c.Get(context.Background(), &Request{URL: srv.URL})
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	// One request line per attempt, one retry warning, one response line.
	requests := fake.byMessage(logMsgRequest)
	assert.Len(t, requests, 2)
	assert.Len(t, fake.byMessage(logMsgResponse), 1)

	retries := fake.byMessage(logMsgRetry)
	require.Len(t, retries, 1)
	assert.Equal(t, 1, retries[0].fields["attempt"])
	assert.Equal(t, nethttp.StatusServiceUnavailable, retries[0].fields["status"])

	// Both attempts carry the same generated request ID.
	first, ok := requests[0].fields["request_id"].(string)
	require.True(t, ok)
	assert.Len(t, first, 36)
	assert.Equal(t, first, requests[1].fields["request_id"])
}

func TestPreviewPayload(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		limit         int
		wantPreview   []byte
		wantTruncated bool
	}{
		{"under limit", []byte("abc"), 10, []byte("abc"), false},
		{"at limit", []byte("abcde"), 5, []byte("abcde"), false},
		{"over limit", []byte("abcdef"), 5, []byte("abcde"), true},
		{"empty", nil, 5, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preview, truncated := previewPayload(tt.body, tt.limit)
			assert.Equal(t, tt.wantPreview, preview)
			assert.Equal(t, tt.wantTruncated, truncated)
		})
	}
}

func TestHeaderMap(t *testing.T) {
	h := nethttp.Header{
		"Accept":  []string{"application/json"},
		"X-Multi": []string{"a", "b"},
		"X-Empty": nil,
	}

	m := headerMap(h)
	assert.Equal(t, "application/json", m["Accept"])
	assert.Equal(t, "a, b", m["X-Multi"])
	assert.Equal(t, "", m["X-Empty"])
}
