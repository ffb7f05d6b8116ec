// Package backoff computes retry delays for failed jobs.
//
// Delay is a pure, deterministic function of the attempt count: it holds
// no state and makes no I/O calls, matching spec.md §4.4. DelayWithJitter
// adds random positive jitter on top of it and is not deterministic.
package backoff

import (
	"math/rand"
	"time"
)

// DefaultBase is used when no backoff_base config value is set.
const DefaultBase = 2

// Delay returns the backoff duration for a given 1-based attempt count and
// base: base^attempts seconds, mirroring original_source/utils.py's
// calculate_backoff_delay. attempts is the count of the failed attempt that
// just finished: a pure function of the attempt number, not of wall-clock
// history.
func Delay(attempts, base int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if base < 1 {
		base = DefaultBase
	}
	seconds := 1
	for i := 0; i < attempts; i++ {
		seconds *= base
	}
	return time.Duration(seconds) * time.Second
}

// DelayWithJitter adds up to 10% positive jitter on top of Delay, as
// permitted (not required) by spec.md §4.4.
func DelayWithJitter(attempts, base int) time.Duration {
	d := Delay(attempts, base)
	jitter := time.Duration(rand.Float64() * 0.10 * float64(d))
	return d + jitter
}
