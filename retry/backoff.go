package retry

import (
	"math/rand/v2"
	"time"
)

// Delay returns the suspension before retry number attempt (zero-based),
// computed from the configured kind and base delay. Results never exceed
// the effective max delay; negative inputs are treated as zero. Kinds
// without a random component return identical values for identical inputs.
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := c.BaseDelay
	if base < 0 {
		base = 0
	}
	limit := c.maxDelay()

	var d time.Duration
	switch c.Kind {
	case KindLinear:
		d = linearDelay(base, attempt, limit)
	case KindExponential:
		d = expDelay(base, attempt, limit)
	case KindExponentialWithJitter:
		d = time.Duration(float64(expDelay(base, attempt, limit)) * rand.Float64())
	case KindRandom:
		d = base
		if base > 0 {
			d = base + rand.N(base)
		}
	case KindFibonacci:
		d = fibDelay(base, attempt, limit)
	case KindExponentialFullJitter:
		if spread := expDelay(base, attempt, limit); spread > 0 {
			d = rand.N(spread)
		}
	case KindNoRetry:
		return 0
	default:
		// KindConstant; unknown kinds degrade to the constant policy,
		// construction-time validation has already warned about them.
		d = base
	}

	if d > limit {
		return limit
	}
	if d < 0 {
		return 0
	}
	return d
}

// linearDelay computes base * (attempt + 1), saturating at limit.
func linearDelay(base time.Duration, attempt int, limit time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if time.Duration(attempt) >= limit/base {
		return limit
	}
	return base * time.Duration(attempt+1)
}

// expDelay computes base * 2^attempt by repeated doubling, saturating at
// limit before the multiplication can overflow.
func expDelay(base time.Duration, attempt int, limit time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 0; i < attempt; i++ {
		if d >= limit {
			return limit
		}
		d <<= 1
		if d <= 0 {
			return limit
		}
	}
	if d > limit {
		return limit
	}
	return d
}

// fibDelay computes base * fib(attempt) with fib(0)=0 and fib(1)=1,
// saturating at limit. The sequence is iterated rather than recursed and
// bails out as soon as the product would exceed the limit.
func fibDelay(base time.Duration, attempt int, limit time.Duration) time.Duration {
	if base <= 0 || attempt <= 0 {
		return 0
	}
	fib, next := int64(0), int64(1)
	for i := 0; i < attempt; i++ {
		fib, next = next, fib+next
		if fib > int64(limit/base) {
			return limit
		}
	}
	return base * time.Duration(fib)
}
