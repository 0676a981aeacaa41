package httpclient

import (
	"context"
	nethttp "net/http"
	"slices"
)

// coalesce shares one in-flight exchange between concurrent identical
// requests. The first caller's context drives the shared exchange; later
// callers receive a copy of the response so body mutations stay private.
func (c *client) coalesce(ctx context.Context, method, target string, req *Request) (*Response, error) {
	value, err, shared := c.flights.Do(flightKey(method, target, req), func() (any, error) {
		return c.execute(ctx, method, target, req)
	})
	if err != nil {
		return nil, err
	}
	resp := value.(*Response)
	if shared {
		clone := *resp
		clone.Body = slices.Clone(resp.Body)
		return &clone, nil
	}
	return resp, nil
}

// flightKey treats requests as identical when method, resolved URL and
// credential identity match. Header differences are ignored.
func flightKey(method, target string, req *Request) string {
	key := method + " " + target
	if req.Auth != nil {
		key += " " + req.Auth.Username
	}
	return key
}

// coalescable limits coalescing to body-less idempotent reads.
func coalescable(method string, req *Request) bool {
	if len(req.Body) > 0 {
		return false
	}
	return method == nethttp.MethodGet || method == nethttp.MethodOptions
}
