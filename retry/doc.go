// Package retry implements the retry decision engine used by the REST
// client: a transient-failure classifier, a family of backoff policies,
// and the orchestration loop that drives repeated attempts.
//
// Classification
//   - HTTP statuses are retried only when they appear in a fixed allow-list
//     of overload/availability signals (429, 500, 502, 503, 504, 507, 408,
//     505, 511). Everything else, including absent statuses, is final.
//   - Transport errors are retried when they look connection-level
//     (timeouts, resets, refusals, temporary DNS failures). Context
//     cancellation is always final.
//
// Backoff
//   - Eight kinds: constant, linear, exponential, exponential with jitter,
//     random, fibonacci, exponential full jitter, and none.
//   - Every computed delay is capped (30s unless overridden) to bound
//     worst-case latency regardless of kind or attempt count.
//
// Orchestration
//   - Do invokes an Operation up to MaxAttempts+1 times (one initial call
//     plus MaxAttempts retries).
//   - A 202 Accepted status terminates the loop immediately.
//   - Exhaustion returns the last outcome as-is; it is never escalated to
//     an error. Callers inspect the returned status.
//   - Server Retry-After hints replace the computed delay for the next
//     suspension, still subject to the cap.
//   - Suspensions select on the caller's context, so cancellation aborts
//     the loop promptly.
package retry
