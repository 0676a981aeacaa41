package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	nethttp "net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/restmark/go-resilience/logger"
	"github.com/restmark/go-resilience/retry"
	"github.com/restmark/go-resilience/trace"
)

const (
	defaultTimeout            = 30 * time.Second
	defaultMaxPayloadLogBytes = 1024
	defaultContentType        = "application/json"

	headerContentType = "Content-Type"
	headerRetryAfter  = "Retry-After"
)

// client implements the Client interface
type client struct {
	httpClient *nethttp.Client
	logger     logger.Logger
	config     *Config
	limiter    *rate.Limiter
	flights    singleflight.Group
	callCount  atomic.Int64
}

// Get performs an HTTP GET request
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post performs an HTTP POST request
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put performs an HTTP PUT request
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Patch performs an HTTP PATCH request
func (c *client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

// Delete performs an HTTP DELETE request
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Options performs an HTTP OPTIONS request
func (c *client) Options(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodOptions, req)
}

// Do performs an HTTP request with the given method, applying the client's
// retry policy. The returned Response reflects the final attempt; non-2xx
// statuses do not produce an error.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}
	target, err := c.resolveURL(req)
	if err != nil {
		return nil, err
	}
	if c.config.CoalesceIdempotent && coalescable(method, req) {
		return c.coalesce(ctx, method, target, req)
	}
	return c.execute(ctx, method, target, req)
}

// execute drives the request through the retry engine. The last attempt's
// response is returned even when retries are exhausted.
func (c *client) execute(ctx context.Context, method, target string, req *Request) (*Response, error) {
	policy := c.retryPolicy(req)
	start := time.Now()

	var (
		lastResp *Response
		seed     traceHeaders
		attempts int
	)
	userHook := policy.OnRetry
	policy.OnRetry = func(attempt int, delay time.Duration, out retry.Outcome) {
		c.logRetry(method, target, seed.requestID, attempt, delay, out)
		if userHook != nil {
			userHook(attempt, delay, out)
		}
	}

	out := retry.Do(ctx, policy, func(ctx context.Context) retry.Outcome {
		attempts++
		resp, resolved, err := c.attempt(ctx, method, target, req, seed)
		lastResp = resp
		if resolved != (traceHeaders{}) {
			seed = resolved
		}
		if err != nil {
			return retry.Outcome{Err: err}
		}
		return retry.Outcome{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Headers.Get(headerRetryAfter)),
		}
	})
	if out.Err != nil {
		return nil, c.asClientError(out.Err)
	}

	lastResp.Stats = Stats{
		ElapsedTime: time.Since(start),
		CallCount:   c.callCount.Load(),
		Attempts:    attempts,
	}
	c.logResponse(lastResp, seed.requestID)
	return lastResp, nil
}

// traceHeaders carries the trace values resolved on an attempt so retries of
// the same call reuse them instead of minting fresh ones.
type traceHeaders struct {
	requestID string
	parent    string
	state     string
}

// attempt performs a single HTTP exchange. Transport errors are returned
// unwrapped so the retry engine can classify them.
func (c *client) attempt(ctx context.Context, method, target string, req *Request, seed traceHeaders) (*Response, traceHeaders, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, traceHeaders{}, err
		}
	}

	httpReq, err := c.buildRequest(ctx, method, target, req, seed)
	if err != nil {
		return nil, traceHeaders{}, err
	}
	resolved := traceHeaders{
		requestID: httpReq.Header.Get(c.traceIDHeader()),
		parent:    httpReq.Header.Get(trace.HeaderTraceParent),
		state:     httpReq.Header.Get(trace.HeaderTraceState),
	}
	c.logRequest(httpReq, req.Body, resolved.requestID)

	c.callCount.Add(1)
	logger.IncrementHTTPCounter(ctx)
	sent := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	logger.AddHTTPElapsed(ctx, time.Since(sent).Nanoseconds())
	if err != nil {
		return nil, resolved, err
	}

	resp, err := c.buildResponse(ctx, httpReq, httpResp)
	if err != nil {
		return nil, resolved, err
	}
	return resp, resolved, nil
}

func (c *client) validateRequest(req *Request) error {
	if req == nil {
		return NewValidationError("request cannot be nil", "")
	}
	if req.URL == "" && c.config.BaseURL == "" {
		return NewValidationError("URL cannot be empty", "url")
	}
	return nil
}

// resolveURL prefixes relative URLs with the client's base URL and resource
// path and merges the request's query values into the target.
func (c *client) resolveURL(req *Request) (string, error) {
	raw := req.URL
	if c.config.BaseURL != "" && !strings.Contains(raw, "://") {
		base := strings.TrimRight(c.config.BaseURL, "/")
		if resource := strings.Trim(c.config.Resource, "/"); resource != "" {
			base += "/" + resource
		}
		if raw != "" && !strings.HasPrefix(raw, "/") {
			raw = "/" + raw
		}
		raw = base + raw
	}

	u, err := neturl.Parse(raw)
	if err != nil {
		return "", NewValidationError("invalid URL: "+err.Error(), "url")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", NewValidationError("URL must be absolute", "url")
	}

	if len(req.Query) > 0 {
		q := u.Query()
		for key, values := range req.Query {
			for _, value := range values {
				q.Add(key, value)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *client) buildRequest(ctx context.Context, method, target string, req *Request, seed traceHeaders) (*nethttp.Request, error) {
	var body io.Reader = nethttp.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, NewValidationError("failed to create request: "+err.Error(), "url")
	}

	c.applyHeaders(httpReq, req)
	c.applyAuth(httpReq, req)
	c.seedTrace(httpReq, seed)
	c.injectTrace(ctx, httpReq)

	for _, interceptor := range c.config.RequestInterceptors {
		if err := interceptor(ctx, httpReq); err != nil {
			return nil, NewInterceptorError("request interceptor failed", "request", err)
		}
	}
	return httpReq, nil
}

func (c *client) buildResponse(ctx context.Context, httpReq *nethttp.Request, httpResp *nethttp.Response) (*Response, error) {
	defer func() { _ = httpResp.Body.Close() }()

	for _, interceptor := range c.config.ResponseInterceptors {
		if err := interceptor(ctx, httpReq, httpResp); err != nil {
			return nil, NewInterceptorError("response interceptor failed", "response", err)
		}
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}, nil
}

// applyHeaders sets default headers first so request headers can override
// them. A JSON content type is assumed for requests that carry a body.
func (c *client) applyHeaders(httpReq *nethttp.Request, req *Request) {
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if len(req.Body) > 0 && httpReq.Header.Get(headerContentType) == "" {
		httpReq.Header.Set(headerContentType, defaultContentType)
	}
}

// applyAuth applies basic auth, request credentials taking precedence over
// the client's.
func (c *client) applyAuth(httpReq *nethttp.Request, req *Request) {
	auth := c.config.BasicAuth
	if req.Auth != nil {
		auth = req.Auth
	}
	if auth != nil {
		httpReq.SetBasicAuth(auth.Username, auth.Password)
	}
}

// seedTrace restores trace values resolved by an earlier attempt. Values the
// caller set explicitly still win because the seed never overwrites.
func (c *client) seedTrace(httpReq *nethttp.Request, seed traceHeaders) {
	if seed.requestID != "" && httpReq.Header.Get(c.traceIDHeader()) == "" {
		httpReq.Header.Set(c.traceIDHeader(), seed.requestID)
	}
	if seed.parent != "" && httpReq.Header.Get(trace.HeaderTraceParent) == "" {
		httpReq.Header.Set(trace.HeaderTraceParent, seed.parent)
	}
	if seed.state != "" && httpReq.Header.Get(trace.HeaderTraceState) == "" {
		httpReq.Header.Set(trace.HeaderTraceState, seed.state)
	}
}

func (c *client) injectTrace(ctx context.Context, httpReq *nethttp.Request) {
	trace.InjectIntoHeadersWithOptions(ctx, httpReq.Header, trace.InjectOptions{
		Mode:            trace.InjectPreserve,
		RequestIDHeader: c.config.TraceIDHeader,
		Extract:         c.config.TraceIDExtractor,
		NewID:           c.traceIDGenerator(),
		W3C:             c.config.EnableW3CTrace,
	})
}

func (c *client) traceIDGenerator() func() string {
	if c.config.NewTraceID != nil {
		return c.config.NewTraceID
	}
	return trace.NewID
}

func (c *client) traceIDHeader() string {
	if c.config.TraceIDHeader != "" {
		return c.config.TraceIDHeader
	}
	return HeaderXRequestID
}

// retryPolicy returns the policy for a request, sanitizing per-request
// overrides the same way Build sanitizes the client's default.
func (c *client) retryPolicy(req *Request) retry.Config {
	if req.Retry != nil {
		return sanitizeRetry(*req.Retry, c.logger)
	}
	return c.config.Retry
}

// asClientError maps a terminal failure onto the client error taxonomy.
// Errors that already carry a type pass through unchanged.
func (c *client) asClientError(err error) error {
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}
	switch {
	case errors.Is(err, context.Canceled):
		return NewCancelledError("request abandoned", err)
	case isTimeout(err):
		return NewTimeoutErrorWrapping("request timed out", c.config.Timeout, err)
	default:
		return NewNetworkError("request failed", err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// parseRetryAfter reads a Retry-After header as delta seconds or an HTTP
// date. Absent, malformed or elapsed values yield zero.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if when, err := nethttp.ParseTime(value); err == nil {
		if d := time.Until(when); d > 0 {
			return d
		}
	}
	return 0
}
