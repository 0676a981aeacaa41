package retry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedOp returns outcomes from script in order, repeating the last one
// once the script is spent, and counts invocations.
func scriptedOp(calls *atomic.Int32, script ...Outcome) Operation {
	return func(_ context.Context) Outcome {
		n := int(calls.Add(1))
		if n > len(script) {
			n = len(script)
		}
		return script[n-1]
	}
}

func immediateCfg(kind Kind, maxAttempts int) Config {
	return Config{MaxAttempts: maxAttempts, BaseDelay: 0, Kind: kind}
}

func TestDoReturnsFirstSuccess(t *testing.T) {
	var calls atomic.Int32
	out := Do(context.Background(), immediateCfg(KindConstant, 3),
		scriptedOp(&calls, Outcome{StatusCode: http.StatusOK}))

	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.NoError(t, out.Err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoNoRetryInvokesExactlyOnce(t *testing.T) {
	var calls atomic.Int32
	out := Do(context.Background(), immediateCfg(KindNoRetry, 5),
		scriptedOp(&calls, Outcome{StatusCode: http.StatusServiceUnavailable}))

	assert.Equal(t, http.StatusServiceUnavailable, out.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoExhaustionReturnsLastOutcome(t *testing.T) {
	const maxAttempts = 3

	var calls atomic.Int32
	out := Do(context.Background(), immediateCfg(KindConstant, maxAttempts),
		scriptedOp(&calls, Outcome{StatusCode: http.StatusServiceUnavailable}))

	// One initial call plus maxAttempts retries, never an error.
	assert.Equal(t, int32(maxAttempts+1), calls.Load())
	assert.Equal(t, http.StatusServiceUnavailable, out.StatusCode)
	assert.NoError(t, out.Err)
}

func TestDoAcceptedSentinelTerminates(t *testing.T) {
	var calls atomic.Int32
	out := Do(context.Background(), immediateCfg(KindConstant, 3),
		scriptedOp(&calls,
			Outcome{StatusCode: http.StatusServiceUnavailable},
			Outcome{StatusCode: http.StatusServiceUnavailable},
			Outcome{StatusCode: http.StatusAccepted},
		))

	assert.Equal(t, http.StatusAccepted, out.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoStopsOnNonTransientStatus(t *testing.T) {
	var calls atomic.Int32
	out := Do(context.Background(), immediateCfg(KindConstant, 5),
		scriptedOp(&calls, Outcome{StatusCode: http.StatusBadRequest}))

	assert.Equal(t, http.StatusBadRequest, out.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoRetriesTransientTransportErrors(t *testing.T) {
	var calls atomic.Int32
	out := Do(context.Background(), immediateCfg(KindConstant, 2),
		scriptedOp(&calls,
			Outcome{Err: io.ErrUnexpectedEOF},
			Outcome{StatusCode: http.StatusOK, Body: []byte("ok")},
		))

	require.NoError(t, out.Err)
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.Equal(t, []byte("ok"), out.Body)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoStopsOnFinalTransportError(t *testing.T) {
	permanent := errors.New("unsupported protocol scheme")

	var calls atomic.Int32
	out := Do(context.Background(), immediateCfg(KindConstant, 5),
		scriptedOp(&calls, Outcome{Err: permanent}))

	assert.Equal(t, permanent, out.Err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoZeroMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	out := Do(context.Background(), immediateCfg(KindConstant, 0),
		scriptedOp(&calls, Outcome{StatusCode: http.StatusServiceUnavailable}))

	assert.Equal(t, http.StatusServiceUnavailable, out.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoNegativeMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	Do(context.Background(), immediateCfg(KindConstant, -2),
		scriptedOp(&calls, Outcome{StatusCode: http.StatusServiceUnavailable}))

	assert.Equal(t, int32(1), calls.Load())
}

func TestDoOnRetryNotifications(t *testing.T) {
	type notification struct {
		attempt int
		delay   time.Duration
		status  int
	}

	var seen []notification
	cfg := Config{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		Kind:        KindLinear,
		OnRetry: func(attempt int, delay time.Duration, out Outcome) {
			seen = append(seen, notification{attempt, delay, out.StatusCode})
		},
	}

	var calls atomic.Int32
	Do(context.Background(), cfg,
		scriptedOp(&calls, Outcome{StatusCode: http.StatusTooManyRequests}))

	require.Len(t, seen, 2)
	assert.Equal(t, notification{0, time.Millisecond, http.StatusTooManyRequests}, seen[0])
	assert.Equal(t, notification{1, 2 * time.Millisecond, http.StatusTooManyRequests}, seen[1])
}

func TestDoRetryAfterHintOverridesBackoff(t *testing.T) {
	var delays []time.Duration
	cfg := Config{
		MaxAttempts: 1,
		BaseDelay:   time.Millisecond,
		Kind:        KindConstant,
		OnRetry: func(_ int, delay time.Duration, _ Outcome) {
			delays = append(delays, delay)
		},
	}

	var calls atomic.Int32
	Do(context.Background(), cfg, scriptedOp(&calls,
		Outcome{StatusCode: http.StatusTooManyRequests, RetryAfter: 5 * time.Millisecond},
		Outcome{StatusCode: http.StatusOK},
	))

	require.Len(t, delays, 1)
	assert.Equal(t, 5*time.Millisecond, delays[0])
}

func TestDoRetryAfterHintClampedToMaxDelay(t *testing.T) {
	var delays []time.Duration
	cfg := Config{
		MaxAttempts: 1,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
		Kind:        KindConstant,
		OnRetry: func(_ int, delay time.Duration, _ Outcome) {
			delays = append(delays, delay)
		},
	}

	var calls atomic.Int32
	Do(context.Background(), cfg, scriptedOp(&calls,
		Outcome{StatusCode: http.StatusServiceUnavailable, RetryAfter: time.Hour},
		Outcome{StatusCode: http.StatusOK},
	))

	require.Len(t, delays, 1)
	assert.Equal(t, 10*time.Millisecond, delays[0])
}

func TestDoCancellationDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := Config{MaxAttempts: 1, BaseDelay: 10 * time.Second, Kind: KindConstant}

	var calls atomic.Int32
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	out := Do(ctx, cfg, scriptedOp(&calls, Outcome{StatusCode: http.StatusServiceUnavailable}))

	assert.Equal(t, int32(1), calls.Load())
	require.Error(t, out.Err)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must abort the wait promptly")
}

func TestDoCancellationBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	op := func(_ context.Context) Outcome {
		calls.Add(1)
		cancel()
		return Outcome{StatusCode: http.StatusServiceUnavailable}
	}

	out := Do(ctx, immediateCfg(KindConstant, 5), op)

	assert.Equal(t, int32(1), calls.Load())
	assert.ErrorIs(t, out.Err, context.Canceled)
}

func TestDoCancelledOperationOutcomeIsFinal(t *testing.T) {
	// An operation that surfaces its context's cancellation terminates the
	// loop through classification, even when the parent is still live.
	var calls atomic.Int32
	out := Do(context.Background(), immediateCfg(KindConstant, 5),
		scriptedOp(&calls, Outcome{Err: context.Canceled}))

	assert.Equal(t, int32(1), calls.Load())
	assert.ErrorIs(t, out.Err, context.Canceled)
}

func TestDoFreshSessionPerCall(t *testing.T) {
	cfg := immediateCfg(KindConstant, 1)

	var first atomic.Int32
	Do(context.Background(), cfg, scriptedOp(&first, Outcome{StatusCode: http.StatusServiceUnavailable}))
	assert.Equal(t, int32(2), first.Load())

	var second atomic.Int32
	Do(context.Background(), cfg, scriptedOp(&second, Outcome{StatusCode: http.StatusServiceUnavailable}))
	assert.Equal(t, int32(2), second.Load())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.MaxDelay)
	assert.Equal(t, KindConstant, cfg.Kind)
}
