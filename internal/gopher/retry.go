package gopher

import "time"

// retryBackoff tracks the delay growth between fetch attempts. It is a
// pure value: Next returns the successor state, so the growth rule is
// testable without touching a socket.
//
// The rule matches wget-style politeness: a zero delay jumps to one
// second on the first retry, and every retry after that grows the delay
// by a quarter.
type retryBackoff struct {
	// delay is slept before the next attempt.
	delay time.Duration
	// remaining counts how many retries are still allowed.
	remaining int
}

// newRetryBackoff returns the initial state: the politeness delay applies
// to the first attempt and maxRetries retries remain after it.
func newRetryBackoff(delay time.Duration, maxRetries int) retryBackoff {
	return retryBackoff{delay: delay, remaining: maxRetries}
}

// Delay returns the sleep to apply before the upcoming attempt.
func (b retryBackoff) Delay() time.Duration {
	return b.delay
}

// Next advances the state after a transient failure. The second return is
// false when the retry budget is exhausted.
func (b retryBackoff) Next() (retryBackoff, bool) {
	if b.remaining <= 0 {
		return b, false
	}
	next := b.delay + b.delay/4
	if next == 0 {
		next = time.Second
	}
	return retryBackoff{delay: next, remaining: b.remaining - 1}, true
}
