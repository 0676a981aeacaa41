package config

import (
	"github.com/restmark/go-resilience/httpclient"
	"github.com/restmark/go-resilience/logger"
	"github.com/restmark/go-resilience/retry"
)

// NewLogger builds the zerolog-backed logger described by cfg.Log. Empty
// mask settings fall back to the logger's defaults.
func NewLogger(cfg *Config) logger.Logger {
	return logger.NewWithFilter(cfg.Log.Level, cfg.Log.Pretty, logger.FilterConfig{
		SensitiveFields: cfg.Log.Mask.Fields,
		MaskValue:       cfg.Log.Mask.Value,
	})
}

// RetryPolicy maps the http.retry section onto a retry policy.
func (c *Config) RetryPolicy() retry.Config {
	return retry.Config{
		MaxAttempts: c.HTTP.Retry.Attempts,
		BaseDelay:   c.HTTP.Retry.Delay.Base,
		MaxDelay:    c.HTTP.Retry.Delay.Max,
		Kind:        retry.Kind(c.HTTP.Retry.Backoff),
	}
}

// NewClient assembles a REST client from the http section of cfg, logging
// through log.
func NewClient(cfg *Config, log logger.Logger) httpclient.Client {
	b := httpclient.NewBuilder(log).
		WithTimeout(cfg.HTTP.Timeout).
		WithRetry(cfg.RetryPolicy()).
		WithW3CTrace(cfg.HTTP.Trace.W3C).
		WithRequestCoalescing(cfg.HTTP.Coalesce).
		WithPayloadLogging(cfg.HTTP.Payload.Log).
		WithMaxPayloadLogBytes(cfg.HTTP.Payload.Max)

	if cfg.HTTP.BaseURL != "" {
		b = b.WithBaseURL(cfg.HTTP.BaseURL)
	}
	if cfg.HTTP.Resource != "" {
		b = b.WithResource(cfg.HTTP.Resource)
	}
	if cfg.HTTP.Trace.Header != "" {
		b = b.WithTraceIDHeader(cfg.HTTP.Trace.Header)
	}
	if cfg.HTTP.Auth.Username != "" {
		b = b.WithBasicAuth(cfg.HTTP.Auth.Username, cfg.HTTP.Auth.Password)
	}
	if cfg.HTTP.Rate.Limit > 0 {
		b = b.WithRateLimit(cfg.HTTP.Rate.Limit, cfg.HTTP.Rate.Burst)
	}
	for key, value := range cfg.HTTP.Headers {
		b = b.WithDefaultHeader(key, value)
	}

	return b.Build()
}
