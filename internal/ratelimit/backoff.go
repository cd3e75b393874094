// Package ratelimit tracks exponential backoff state shared across a single
// call site (order placement; the WS feeds keep their own reconnect delays).
// Unlike a steady-state token
// bucket, a Backoff only engages after an actual rate-limit error and clears
// on the next success.
package ratelimit

import (
	"sync"
	"time"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 60 * time.Second
)

// Backoff implements the initial-1s, double-on-error, cap-at-60s, reset-on-
// success policy. Safe for concurrent use.
type Backoff struct {
	mu                sync.Mutex
	consecutiveErrors int
	current           time.Duration
	nextAllowed       time.Time
}

// NewBackoff returns a Backoff with no errors recorded.
func NewBackoff() *Backoff {
	return &Backoff{current: initialBackoff}
}

// RecordSuccess clears the backoff state entirely.
func (b *Backoff) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveErrors = 0
	b.current = initialBackoff
	b.nextAllowed = time.Time{}
}

// RecordError registers a rate-limit error and returns the new backoff
// duration that must elapse before the next attempt.
func (b *Backoff) RecordError() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.consecutiveErrors > 0 {
		b.current *= 2
		if b.current > maxBackoff {
			b.current = maxBackoff
		}
	} else {
		b.current = initialBackoff
	}
	b.consecutiveErrors++
	b.nextAllowed = time.Now().Add(b.current)
	return b.current
}

// ShouldSkip reports whether the caller is still inside an active backoff
// window and should skip its attempt this tick.
func (b *Backoff) ShouldSkip() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Now().Before(b.nextAllowed)
}

// RemainingBackoff returns how much longer the caller must wait, or zero if
// the backoff window has already elapsed.
func (b *Backoff) RemainingBackoff() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	remaining := time.Until(b.nextAllowed)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ConsecutiveErrors returns the current error streak, for logging.
func (b *Backoff) ConsecutiveErrors() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutiveErrors
}
