package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
)

// IsTransient reports whether an HTTP status identifies a failure expected
// to clear without caller intervention. The set is a closed allow-list of
// overload and upstream-availability signals; every other status, including
// all 2xx/3xx results and unlisted 4xx client errors, is final. Absent and
// malformed statuses (zero or negative) are final too.
func IsTransient(status int) bool {
	switch status {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusHTTPVersionNotSupported,
		http.StatusInsufficientStorage,
		http.StatusNetworkAuthenticationRequired:
		return true
	default:
		return false
	}
}

// IsTransientErr classifies transport-level failures. Connection-level
// faults (timeouts, resets, refusals, temporary DNS problems, truncated
// reads) are transient. context.Canceled is always final. A deadline error
// is treated as a per-attempt timeout and is transient; callers observing
// their own context's expiry must stop the loop instead of consulting this
// predicate, which Do does before every retry. Unknown errors are final.
func IsTransientErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.IsTimeout
	}
	return false
}
