package discord

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces REST calls to the Discord API ahead of the remote's
// own enforcement. A cooldown window is layered on top after an observed
// 429, honoring the retry-after the API reported.
type RateLimiter struct {
	limiter *rate.Limiter

	cooldownUntil time.Time
	mu            sync.Mutex
}

// NewRateLimiter creates a limiter allowing rps requests per second.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// DefaultRateLimiter returns a limiter with conservative settings; the
// bot only issues a couple of calls per poll cycle.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(1.0, 2)
}

// Wait blocks until the next request is allowed.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	waitUntil := r.cooldownUntil
	r.mu.Unlock()

	if time.Now().Before(waitUntil) {
		select {
		case <-time.After(time.Until(waitUntil)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return r.limiter.Wait(ctx)
}

// SetCooldown pauses all requests for the given duration, typically the
// retry-after from a 429 response.
func (r *RateLimiter) SetCooldown(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cooldownUntil = time.Now().Add(d)
}
