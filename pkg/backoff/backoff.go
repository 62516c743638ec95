// Package backoff provides bounded exponential backoff used when retrying
// transient transport failures against cluster nodes.
package backoff

import (
	"math/rand"
	"time"
)

// BackOff contains parameters applied to a backoff function
type BackOff struct {
	attempts int
	// MaxAttempts bounds the retry budget; 0 means a single attempt.
	MaxAttempts int
	// Duration is the initial delay, multiplied by Factor after each attempt
	Duration time.Duration
	// Factor is the multiplier applied to Duration after each attempt
	Factor float64
	// Duration is capped at MaxDuration before applying Jitter
	MaxDuration time.Duration
	// JitterFactor randomizes each delay to avoid retry stampedes
	JitterFactor float64
}

// Default returns the bounded retry parameters used for cluster commands.
func Default() *BackOff {
	return &BackOff{
		MaxAttempts:  5,
		Duration:     500 * time.Millisecond,
		Factor:       2,
		MaxDuration:  8 * time.Second,
		JitterFactor: 0.2,
	}
}

// Next returns the delay before the next attempt, or false when the retry
// budget is spent.
func (b *BackOff) Next() (time.Duration, bool) {
	b.attempts++
	if b.attempts >= b.MaxAttempts {
		return 0, false
	}

	duration := b.Duration

	// calculate duration for next attempt
	if b.Factor != 0 {
		b.Duration = time.Duration(float64(b.Duration) * b.Factor)
		if b.MaxDuration > 0 && b.Duration > b.MaxDuration {
			b.Duration = b.MaxDuration
		}
	}

	if b.JitterFactor > 0 {
		duration = b.Jitter(duration)
	}

	return duration, true
}

// Jitter returns a duration between initial and (initial + b.JitterFactor*initial)
func (b *BackOff) Jitter(initial time.Duration) time.Duration {
	factor := b.JitterFactor
	if factor <= 0 {
		factor = 1
	}

	return initial + time.Duration(rand.Float64()*factor*float64(initial))
}

// Attempts returns number of attempts tried
func (b *BackOff) Attempts() int {
	return b.attempts
}
