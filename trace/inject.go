package trace

import (
	"context"
	"strings"
)

// HeaderCarrier abstracts a mutable header collection for trace injection.
// net/http's Header satisfies it directly.
type HeaderCarrier interface {
	Get(key string) string
	Set(key, value string)
}

// MapCarrier adapts a plain header map to the HeaderCarrier interface.
// Lookups are case-insensitive; Set replaces case-variant keys so the map
// never holds duplicate headers.
type MapCarrier map[string]string

func (c MapCarrier) Get(key string) string {
	if v, ok := c[key]; ok {
		return v
	}
	for k, v := range c {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (c MapCarrier) Set(key, value string) {
	for k := range c {
		if k != key && strings.EqualFold(k, key) {
			delete(c, k)
		}
	}
	c[key] = value
}

// InjectMode selects how injection treats values already present on the carrier.
type InjectMode int

const (
	// InjectPreserve keeps existing carrier values and only fills gaps.
	InjectPreserve InjectMode = iota
	// InjectOverwrite lets context values replace existing carrier values.
	InjectOverwrite
)

// InjectOptions configures InjectIntoHeadersWithOptions.
type InjectOptions struct {
	Mode InjectMode
	// RequestIDHeader overrides the header that carries the request ID.
	// Empty means HeaderXRequestID.
	RequestIDHeader string
	// Extract overrides how the request ID is read from the context.
	// Nil means IDFromContext.
	Extract func(context.Context) (string, bool)
	// NewID generates a request ID when neither the carrier, the context,
	// nor a traceparent supplies one. Nil disables generation.
	NewID func() string
	// W3C controls whether traceparent and tracestate headers are injected.
	W3C bool
}

// InjectIntoHeaders fills the carrier with trace headers from ctx, preserving
// anything the caller already set and generating a request ID and traceparent
// when no source supplies them.
func InjectIntoHeaders(ctx context.Context, carrier HeaderCarrier) {
	InjectIntoHeadersWithOptions(ctx, carrier, InjectOptions{
		Mode:  InjectPreserve,
		NewID: NewID,
		W3C:   true,
	})
}

// InjectIntoHeadersWithOptions propagates trace context into the carrier.
//
// The request ID is resolved in precedence order: the carrier's existing
// header, then the context, then the trace ID field of a caller-supplied
// traceparent, then opts.NewID. In InjectOverwrite mode a context value
// replaces the carrier's header.
func InjectIntoHeadersWithOptions(ctx context.Context, carrier HeaderCarrier, opts InjectOptions) {
	if carrier == nil {
		return
	}
	idHeader := opts.RequestIDHeader
	if idHeader == "" {
		idHeader = HeaderXRequestID
	}
	extract := opts.Extract
	if extract == nil {
		extract = IDFromContext
	}

	parent := carrier.Get(HeaderTraceParent)
	if ctxParent, ok := ParentFromContext(ctx); ok && (parent == "" || opts.Mode == InjectOverwrite) {
		parent = ctxParent
	}
	inbound := parent != ""
	if opts.W3C {
		if parent == "" {
			parent = GenerateTraceParent()
		}
		carrier.Set(HeaderTraceParent, parent)
		if state, ok := StateFromContext(ctx); ok && (carrier.Get(HeaderTraceState) == "" || opts.Mode == InjectOverwrite) {
			carrier.Set(HeaderTraceState, state)
		}
	}

	existing := carrier.Get(idHeader)
	if existing != "" && opts.Mode != InjectOverwrite {
		return
	}
	if id, ok := extract(ctx); ok {
		carrier.Set(idHeader, id)
		return
	}
	if existing != "" {
		return
	}
	// Only a caller-supplied traceparent seeds the request ID; a parent
	// generated above would shadow opts.NewID otherwise.
	if inbound {
		if traceID, _, ok := ParseTraceParent(parent); ok {
			carrier.Set(idHeader, traceID)
			return
		}
	}
	if opts.NewID != nil {
		carrier.Set(idHeader, opts.NewID())
	}
}
