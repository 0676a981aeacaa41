package httpclient

import (
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/restmark/go-resilience/retry"
)

const (
	logMsgRequest  = "REST client request"
	logMsgResponse = "REST client response"
	logMsgRetry    = "REST client retry"
)

// logRequest logs an outbound attempt. Payload details are emitted at debug
// level only when payload logging is enabled.
func (c *client) logRequest(req *nethttp.Request, body []byte, traceID string) {
	event := c.logger.Info().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", traceID)
	if count := len(req.Header); count > 0 {
		event = event.Int("header_count", count)
	}
	if len(body) > 0 {
		event = event.Int("body_size", len(body))
	}
	event.Msg(logMsgRequest)

	if !c.config.LogPayloads {
		return
	}
	preview, truncated := previewPayload(body, c.payloadLimit())
	c.logger.Debug().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", traceID).
		Interface("headers", headerMap(req.Header)).
		Int("body_size", len(body)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview).
		Msg(logMsgRequest)
}

// logResponse logs the terminal response with aggregate request stats.
func (c *client) logResponse(resp *Response, traceID string) {
	event := c.logger.Info().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Int64("call_count", resp.Stats.CallCount).
		Str("request_id", traceID)
	if len(resp.Body) > 0 {
		event = event.Int("body_size", len(resp.Body))
	}
	event.Msg(logMsgResponse)

	if !c.config.LogPayloads {
		return
	}
	preview, truncated := previewPayload(resp.Body, c.payloadLimit())
	c.logger.Debug().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Str("request_id", traceID).
		Interface("headers", headerMap(resp.Headers)).
		Int("body_size", len(resp.Body)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview).
		Msg(logMsgResponse)
}

// logRetry records a scheduled retry at warn level.
func (c *client) logRetry(method, target, traceID string, attempt int, delay time.Duration, out retry.Outcome) {
	event := c.logger.Warn().
		Str("method", method).
		Str("url", target).
		Int("attempt", attempt+1).
		Dur("delay", delay)
	if traceID != "" {
		event = event.Str("request_id", traceID)
	}
	if out.StatusCode > 0 {
		event = event.Int("status", out.StatusCode)
	}
	if out.Err != nil {
		event = event.Err(out.Err)
	}
	event.Msg(logMsgRetry)
}

func (c *client) payloadLimit() int {
	if c.config.MaxPayloadLogBytes > 0 {
		return c.config.MaxPayloadLogBytes
	}
	return defaultMaxPayloadLogBytes
}

func previewPayload(body []byte, limit int) (preview []byte, truncated bool) {
	if len(body) <= limit {
		return body, false
	}
	return body[:limit], true
}

func headerMap(h nethttp.Header) map[string]string {
	m := make(map[string]string, len(h))
	for key, values := range h {
		m[key] = strings.Join(values, ", ")
	}
	return m
}
