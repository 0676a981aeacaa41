package retry

// Kind selects the delay-computation strategy applied between attempts.
type Kind string

const (
	// KindConstant waits BaseDelay between every attempt.
	KindConstant Kind = "constant"
	// KindLinear waits BaseDelay * (attempt + 1).
	KindLinear Kind = "linear"
	// KindExponential waits BaseDelay * 2^attempt.
	KindExponential Kind = "exponential"
	// KindExponentialWithJitter scales the exponential delay by a uniform
	// random factor in [0, 1).
	KindExponentialWithJitter Kind = "exponential_jitter"
	// KindRandom waits a uniform random duration in [BaseDelay, 2*BaseDelay).
	KindRandom Kind = "random"
	// KindFibonacci waits BaseDelay * fib(attempt) with fib(0)=0, fib(1)=1.
	KindFibonacci Kind = "fibonacci"
	// KindExponentialFullJitter waits a uniform random duration in
	// [0, BaseDelay * 2^attempt).
	KindExponentialFullJitter Kind = "exponential_full_jitter"
	// KindNoRetry disables retries entirely: the operation runs exactly once
	// regardless of its outcome.
	KindNoRetry Kind = "none"
)

// kinds lists every valid Kind, in the order they are documented.
var kinds = []Kind{
	KindConstant,
	KindLinear,
	KindExponential,
	KindExponentialWithJitter,
	KindRandom,
	KindFibonacci,
	KindExponentialFullJitter,
	KindNoRetry,
}

// String returns the configuration-stable name of the kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether k names a known backoff kind.
func (k Kind) IsValid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Kinds returns the closed set of valid kinds.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}
