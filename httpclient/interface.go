package httpclient

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"time"

	"github.com/restmark/go-resilience/retry"
	"github.com/restmark/go-resilience/trace"
)

const (
	// HeaderXRequestID is the standard header name for request tracing
	HeaderXRequestID = trace.HeaderXRequestID
	// HeaderTraceParent is the W3C trace context header name
	HeaderTraceParent = trace.HeaderTraceParent
	// HeaderTraceState is the W3C trace context "tracestate" header name
	HeaderTraceState = trace.HeaderTraceState
)

// Client defines the REST client interface for making HTTP requests
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Options(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request represents an HTTP request with all necessary data.
// URL may be absolute, or relative to the client's base URL.
type Request struct {
	URL     string
	Query   url.Values
	Headers map[string]string
	Body    []byte
	Auth    *BasicAuth
	// Retry overrides the client's retry policy for this request.
	Retry *retry.Config
}

// Response represents an HTTP response with tracking information.
// Responses are returned for every completed exchange regardless of
// status code; use StatusError to turn a non-2xx status into an error.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// StatusError returns an HTTP error for non-2xx responses, nil otherwise.
func (r *Response) StatusError() error {
	if IsSuccessStatus(r.StatusCode) {
		return nil
	}
	return NewHTTPError(fmt.Sprintf("request failed with status %d", r.StatusCode), r.StatusCode, r.Body)
}

// Stats contains request execution statistics
type Stats struct {
	// ElapsedTime spans all attempts of the request, including backoff waits.
	ElapsedTime time.Duration
	// CallCount is the client-wide number of HTTP calls made so far.
	CallCount int64
	// Attempts is the number of HTTP calls this request took.
	Attempts int
}

// BasicAuth contains basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving the response
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error

// Config holds the REST client configuration
type Config struct {
	// BaseURL is prefixed to relative request URLs.
	BaseURL string
	// Resource is a path segment joined between BaseURL and relative URLs.
	Resource string
	Timeout  time.Duration
	// Retry is the default policy for requests that do not carry their own.
	Retry                retry.Config
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	BasicAuth            *BasicAuth
	DefaultHeaders       map[string]string
	// RequestsPerSecond throttles outbound attempts; zero disables throttling.
	RequestsPerSecond float64
	// RateBurst is the throttle's burst allowance (default: 1).
	RateBurst int
	// CoalesceIdempotent shares one in-flight exchange between concurrent
	// identical GET and OPTIONS requests.
	CoalesceIdempotent bool
	// LogPayloads enables debug-level logging of headers and body payloads
	LogPayloads bool
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int
	// TraceIDHeader configures the header name used for trace ID propagation (default: X-Request-ID)
	TraceIDHeader string
	// NewTraceID generates a new trace ID when none is present (default: uuid)
	NewTraceID func() string
	// TraceIDExtractor allows advanced extraction of a trace ID from context; return ok=false to fallback to generator
	TraceIDExtractor func(_ context.Context) (traceID string, ok bool)
	// EnableW3CTrace enables W3C Trace Context (traceparent/tracestate) propagation and generation
	EnableW3CTrace bool
}

// Trace ID utility functions

// WithTraceID adds a trace ID to the context for HTTP client propagation
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return trace.WithTraceID(ctx, traceID)
}

// TraceIDFromContext returns a trace ID from context if present
func TraceIDFromContext(ctx context.Context) (string, bool) { return trace.IDFromContext(ctx) }

// EnsureTraceID returns an existing trace ID from context or generates a new one
func EnsureTraceID(ctx context.Context) string { return trace.EnsureTraceID(ctx) }

// GetTraceIDFromContext remains for backward compatibility; it ensures a non-empty value
func GetTraceIDFromContext(ctx context.Context) string { return EnsureTraceID(ctx) }

// WithTraceParent adds a W3C traceparent value to the context
func WithTraceParent(ctx context.Context, traceParent string) context.Context {
	return trace.WithTraceParent(ctx, traceParent)
}

// TraceParentFromContext returns a traceparent from context if present
func TraceParentFromContext(ctx context.Context) (string, bool) {
	return trace.ParentFromContext(ctx)
}

// WithTraceState adds a W3C tracestate value to the context
func WithTraceState(ctx context.Context, traceState string) context.Context {
	return trace.WithTraceState(ctx, traceState)
}

// TraceStateFromContext returns a tracestate from context if present
func TraceStateFromContext(ctx context.Context) (string, bool) {
	return trace.StateFromContext(ctx)
}

// GenerateTraceParent creates a minimal W3C traceparent header value.
// Format: version(2)-trace-id(32)-span-id(16)-flags(2), e.g., "00-<32>-<16>-01"
func GenerateTraceParent() string { return trace.GenerateTraceParent() }

// NewTraceIDInterceptor creates a request interceptor that adds trace ID headers.
// This provides an alternative approach for users who want explicit control
func NewTraceIDInterceptor() RequestInterceptor {
	return NewTraceIDInterceptorFor(HeaderXRequestID)
}

// NewTraceIDInterceptorFor creates an interceptor that uses a custom header name.
// An existing header value is never overridden; when the context carries no
// trace ID a fresh one is generated.
func NewTraceIDInterceptorFor(header string) RequestInterceptor {
	return func(ctx context.Context, req *nethttp.Request) error {
		trace.InjectIntoHeadersWithOptions(ctx, req.Header, trace.InjectOptions{
			Mode:            trace.InjectPreserve,
			RequestIDHeader: header,
			NewID:           trace.NewID,
		})
		return nil
	}
}
