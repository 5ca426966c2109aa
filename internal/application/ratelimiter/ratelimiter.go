package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// RateLimiter admits at most maxCalls within any sliding window.
type RateLimiter struct {
	mu             sync.Mutex
	maxCalls       int
	windowDuration time.Duration
	callTimestamps []time.Time
	now            func() time.Time
}

func NewRateLimiter(maxCalls int, windowDuration time.Duration) *RateLimiter {
	if maxCalls <= 0 {
		maxCalls = 1
	}
	if windowDuration <= 0 {
		windowDuration = time.Second
	}

	return &RateLimiter{
		maxCalls:       maxCalls,
		windowDuration: windowDuration,
		callTimestamps: make([]time.Time, 0, maxCalls),
		now:            time.Now,
	}
}

// PerSecond is shorthand for a limiter admitting rps calls per second.
func PerSecond(rps int) *RateLimiter {
	return NewRateLimiter(rps, time.Second)
}

// Allow records a call if the window has room and fails fast otherwise.
func (rl *RateLimiter) Allow(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := rl.reserve(); !ok {
		return ErrRateLimitExceeded
	}
	return nil
}

// Wait blocks until the window has room or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		delay, ok := rl.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve records a call when allowed. Otherwise it returns how long until
// the oldest call leaves the window.
func (rl *RateLimiter) reserve() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evict(now)

	if len(rl.callTimestamps) >= rl.maxCalls {
		return rl.callTimestamps[0].Add(rl.windowDuration).Sub(now), false
	}

	rl.callTimestamps = append(rl.callTimestamps, now)
	return 0, true
}

func (rl *RateLimiter) evict(now time.Time) {
	cutoff := now.Add(-rl.windowDuration)
	valid := rl.callTimestamps[:0]
	for _, ts := range rl.callTimestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	rl.callTimestamps = valid
}
