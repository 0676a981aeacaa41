package httpclient

import (
	"context"
	nethttp "net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/restmark/go-resilience/logger"
	"github.com/restmark/go-resilience/retry"
)

// NewClient creates a REST client with default configuration
func NewClient(log logger.Logger) Client {
	return NewBuilder(log).Build()
}

// Builder provides a fluent interface for configuring REST clients
type Builder struct {
	config     Config
	logger     logger.Logger
	httpClient *nethttp.Client
	transport  nethttp.RoundTripper
}

// NewBuilder creates a client builder with default configuration: a 30s
// timeout, one retry with a constant 5s delay, W3C trace propagation on.
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		config: Config{
			Timeout:            defaultTimeout,
			Retry:              retry.DefaultConfig(),
			MaxPayloadLogBytes: defaultMaxPayloadLogBytes,
			EnableW3CTrace:     true,
		},
		logger: log,
	}
}

// WithBaseURL sets the base URL prefixed to relative request URLs
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithResource sets a resource path joined between the base URL and
// relative request URLs, e.g. "/v1/reports"
func (b *Builder) WithResource(resource string) *Builder {
	b.config.Resource = resource
	return b
}

// WithTimeout sets the per-attempt timeout. Zero disables it.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithRetry sets the default retry policy for requests made by the client
func (b *Builder) WithRetry(cfg retry.Config) *Builder {
	b.config.Retry = cfg
	return b
}

// WithBasicAuth sets default basic auth credentials
func (b *Builder) WithBasicAuth(username, password string) *Builder {
	b.config.BasicAuth = &BasicAuth{Username: username, Password: password}
	return b
}

// WithDefaultHeader adds a header sent with every request unless overridden
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	if b.config.DefaultHeaders == nil {
		b.config.DefaultHeaders = make(map[string]string)
	}
	b.config.DefaultHeaders[key] = value
	return b
}

// WithRequestInterceptor adds an interceptor invoked before each attempt
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds an interceptor invoked on each raw response
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithHTTPClient supplies a custom HTTP client. A zero timeout on it is
// replaced with the builder's timeout.
func (b *Builder) WithHTTPClient(httpClient *nethttp.Client) *Builder {
	b.httpClient = httpClient
	return b
}

// WithTransport supplies a custom transport for the underlying HTTP client
func (b *Builder) WithTransport(transport nethttp.RoundTripper) *Builder {
	b.transport = transport
	return b
}

// WithTraceIDHeader overrides the trace ID header name. Empty keeps the default.
func (b *Builder) WithTraceIDHeader(header string) *Builder {
	if header != "" {
		b.config.TraceIDHeader = header
	}
	return b
}

// WithTraceIDGenerator overrides trace ID generation. Nil keeps the default.
func (b *Builder) WithTraceIDGenerator(generator func() string) *Builder {
	if generator != nil {
		b.config.NewTraceID = generator
	}
	return b
}

// WithTraceIDExtractor overrides trace ID extraction from context. Nil keeps the default.
func (b *Builder) WithTraceIDExtractor(extractor func(ctx context.Context) (string, bool)) *Builder {
	if extractor != nil {
		b.config.TraceIDExtractor = extractor
	}
	return b
}

// WithW3CTrace toggles W3C Trace Context propagation
func (b *Builder) WithW3CTrace(enabled bool) *Builder {
	b.config.EnableW3CTrace = enabled
	return b
}

// WithRateLimit throttles outbound attempts to rps requests per second with
// the given burst. Zero rps disables throttling.
func (b *Builder) WithRateLimit(rps float64, burst int) *Builder {
	b.config.RequestsPerSecond = rps
	b.config.RateBurst = burst
	return b
}

// WithRequestCoalescing shares one in-flight exchange between concurrent
// identical GET and OPTIONS requests
func (b *Builder) WithRequestCoalescing(enabled bool) *Builder {
	b.config.CoalesceIdempotent = enabled
	return b
}

// WithPayloadLogging toggles debug-level logging of headers and bodies
func (b *Builder) WithPayloadLogging(enabled bool) *Builder {
	b.config.LogPayloads = enabled
	return b
}

// WithMaxPayloadLogBytes caps the body bytes included in payload logs
func (b *Builder) WithMaxPayloadLogBytes(limit int) *Builder {
	if limit > 0 {
		b.config.MaxPayloadLogBytes = limit
	}
	return b
}

// Build creates the configured client
func (b *Builder) Build() Client {
	cfg := b.config
	cfg.Retry = sanitizeRetry(cfg.Retry, b.logger)
	if cfg.MaxPayloadLogBytes <= 0 {
		cfg.MaxPayloadLogBytes = defaultMaxPayloadLogBytes
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &nethttp.Client{Timeout: cfg.Timeout}
	} else {
		clone := *httpClient
		httpClient = &clone
		if httpClient.Timeout == 0 {
			httpClient.Timeout = cfg.Timeout
		}
	}
	if b.transport != nil {
		httpClient.Transport = b.transport
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &client{
		httpClient: httpClient,
		logger:     b.logger,
		config:     &cfg,
		limiter:    limiter,
	}
}

// sanitizeRetry replaces out-of-range or unknown retry settings with the
// documented defaults, logging a warning for each replacement.
func sanitizeRetry(cfg retry.Config, log logger.Logger) retry.Config {
	if cfg.MaxAttempts < 0 {
		if log != nil {
			log.Warn().Int("max_attempts", cfg.MaxAttempts).Msg("Negative retry attempts, using default")
		}
		cfg.MaxAttempts = retry.DefaultMaxAttempts
	}
	if cfg.BaseDelay < 0 {
		if log != nil {
			log.Warn().Dur("base_delay", cfg.BaseDelay).Msg("Negative retry delay, using default")
		}
		cfg.BaseDelay = retry.DefaultBaseDelay
	}
	if cfg.MaxDelay < 0 {
		cfg.MaxDelay = 0
	}
	if cfg.Kind == "" {
		cfg.Kind = retry.KindConstant
	} else if !cfg.Kind.IsValid() {
		if log != nil {
			log.Warn().Str("kind", cfg.Kind.String()).Msg("Unknown backoff kind, using constant")
		}
		cfg.Kind = retry.KindConstant
	}
	return cfg
}
