// Package httpclient provides a composable REST client with
// request/response interceptors, default headers, basic auth, trace
// propagation, and policy-driven retries with pluggable backoff.
//
// Retries
//   - Controlled via Builder.WithRetry(retry.Config) or per request via
//     Request.Retry.
//   - A policy allowing N retries yields at most N+1 attempts.
//   - Retries occur on:
//   - Transient HTTP statuses (429, 5xx gateway-style failures, 408)
//   - Transport errors classified as transient (resets, refusals, timeouts)
//   - Other statuses and errors are terminal; 202 Accepted always is.
//   - Exhausted retries still return the final response, not an error.
//
// Backoff Strategy
//   - Selected by retry.Kind: constant, linear, exponential, jittered
//     variants, fibonacci, random, or none.
//   - Delays are capped (30 seconds unless overridden).
//   - A Retry-After response header replaces the computed delay, subject to
//     the same cap.
//
// Notes
//   - Request bodies are re-sent by rebuilding the http.Request on each attempt.
//   - Interceptor and validation errors are not retried and are surfaced immediately.
//   - Context cancellation aborts in-flight attempts and backoff waits.
package httpclient
