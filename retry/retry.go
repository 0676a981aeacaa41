package retry

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultMaxAttempts is the stock retry budget after the initial call.
	DefaultMaxAttempts = 1

	// DefaultBaseDelay is the stock base delay between attempts.
	DefaultBaseDelay = 5 * time.Second

	// DefaultMaxDelay caps every computed delay unless Config.MaxDelay
	// overrides it.
	DefaultMaxDelay = 30 * time.Second
)

// Config governs how often an operation is re-attempted and how long each
// suspension lasts. The zero value disables waiting entirely; DefaultConfig
// returns the stock policy. A Config is immutable once handed to Do and may
// be shared by any number of concurrent calls.
type Config struct {
	// MaxAttempts is the retry budget after the initial call, so the total
	// number of invocations is MaxAttempts+1.
	MaxAttempts int

	// BaseDelay seeds every backoff formula.
	BaseDelay time.Duration

	// MaxDelay caps each computed delay. Zero selects DefaultMaxDelay.
	MaxDelay time.Duration

	// Kind selects the backoff formula. KindNoRetry short-circuits the loop
	// regardless of outcome.
	Kind Kind

	// OnRetry, when set, is invoked before each suspension with the
	// zero-based retry index, the delay about to be applied, and the outcome
	// that triggered the retry. Notification only; it cannot veto the retry.
	OnRetry func(attempt int, delay time.Duration, out Outcome)
}

// DefaultConfig returns the stock policy: one retry, five-second constant
// backoff, thirty-second ceiling.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		Kind:        KindConstant,
	}
}

func (c Config) maxDelay() time.Duration {
	if c.MaxDelay > 0 {
		return c.MaxDelay
	}
	return DefaultMaxDelay
}

// Outcome is the result of a single attempt. StatusCode and Body carry the
// HTTP result when the attempt produced a response; Err carries the
// transport failure when it did not. RetryAfter is an optional
// server-provided wait hint honored by Do. Outcomes are produced fresh per
// attempt and never persisted.
type Outcome struct {
	StatusCode int
	Body       []byte
	RetryAfter time.Duration
	Err        error
}

// Transient reports whether the outcome is worth another attempt: transport
// failures are classified by IsTransientErr, statuses by IsTransient.
func (o Outcome) Transient() bool {
	if o.Err != nil {
		return IsTransientErr(o.Err)
	}
	return IsTransient(o.StatusCode)
}

// Operation performs one attempt. Implementations must map their own
// failures into the returned Outcome instead of panicking or leaking them,
// so the loop can evaluate every attempt uniformly.
type Operation func(ctx context.Context) Outcome

// Do invokes op until it returns a non-transient outcome, the 202 Accepted
// sentinel, the retry budget is spent, or ctx is done. Each call runs an
// independent session; no state is shared across calls beyond cfg itself.
//
// Exhaustion returns the last outcome as-is, never an error: callers decide
// what a still-failing status means. Cancellation, whether it fires during
// an attempt or during a suspension, returns an Outcome whose Err is the
// context's error.
func Do(ctx context.Context, cfg Config, op Operation) Outcome {
	out := op(ctx)
	if cfg.Kind == KindNoRetry || terminal(out) {
		return out
	}

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Outcome{Err: err}
		}

		delay := cfg.Delay(attempt)
		if out.RetryAfter > 0 {
			delay = min(out.RetryAfter, cfg.maxDelay())
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, out)
		}
		if err := sleep(ctx, delay); err != nil {
			return Outcome{Err: err}
		}

		out = op(ctx)
		if terminal(out) {
			return out
		}
	}
	return out
}

// terminal reports whether out ends the loop: the Accepted sentinel counts
// as immediate success regardless of classification, and any non-transient
// result is final.
func terminal(out Outcome) bool {
	if out.Err == nil && out.StatusCode == http.StatusAccepted {
		return true
	}
	return !out.Transient()
}

// sleep waits for d unless ctx is done first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
