package reactor

import (
	"sync"
	"time"
)

// FailureKind classifies a failed operation for the backoff controller.
type FailureKind int

const (
	// FailureTransient covers fetch or reaction failures other than throttling.
	FailureTransient FailureKind = iota
	// FailureRateLimited is an explicit throttling signal from the remote service.
	FailureRateLimited
)

// BackoffConfig parameterizes the backoff controller.
// The two thresholds default to the same value in config, preserving the
// single-failure-path behavior, but can be tuned independently so normal
// transient errors are not over-penalized.
type BackoffConfig struct {
	BaseInterval       time.Duration
	MaxInterval        time.Duration
	Multiplier         float64
	ErrorThreshold     int
	RateLimitThreshold int
}

// Backoff tracks consecutive failures and derives the current poll
// interval from them. The interval only grows under sustained failure
// (consecutive errors at or above the applicable threshold) and only
// shrinks on a success observed while above baseline.
// Safe for concurrent use: reaction attempts from a previous cycle may
// report results while the next cycle is already running.
type Backoff struct {
	mu                sync.Mutex
	cfg               BackoffConfig
	consecutiveErrors int
	interval          time.Duration
	changed           chan struct{}
}

// NewBackoff creates a controller starting at the base interval.
func NewBackoff(cfg BackoffConfig) *Backoff {
	return &Backoff{
		cfg:      cfg,
		interval: cfg.BaseInterval,
		changed:  make(chan struct{}, 1),
	}
}

// Interval returns the current poll interval.
func (b *Backoff) Interval() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.interval
}

// ConsecutiveErrors returns the current consecutive failure count.
func (b *Backoff) ConsecutiveErrors() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutiveErrors
}

// Changed delivers a signal whenever the interval changes, so the
// scheduler can re-arm its timer without waiting out the old period.
func (b *Backoff) Changed() <-chan struct{} {
	return b.changed
}

// OnFailure records a failed operation. Once the consecutive failure
// count reaches the threshold for the failure kind, the interval is
// multiplied and clamped to the configured maximum.
func (b *Backoff) OnFailure(kind FailureKind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveErrors++

	threshold := b.cfg.ErrorThreshold
	if kind == FailureRateLimited {
		threshold = b.cfg.RateLimitThreshold
	}
	if b.consecutiveErrors < threshold {
		return
	}

	next := time.Duration(float64(b.interval) * b.cfg.Multiplier)
	if next > b.cfg.MaxInterval {
		next = b.cfg.MaxInterval
	}
	b.setInterval(next)
}

// OnSuccess records a successful operation: the failure streak resets and
// the interval recovers one multiplier step toward the baseline.
func (b *Backoff) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.consecutiveErrors > 0 {
		b.consecutiveErrors = 0
	}

	if b.interval <= b.cfg.BaseInterval {
		return
	}
	next := time.Duration(float64(b.interval) / b.cfg.Multiplier)
	if next < b.cfg.BaseInterval {
		next = b.cfg.BaseInterval
	}
	b.setInterval(next)
}

// setInterval updates the interval and signals the scheduler on change.
// Callers must hold b.mu.
func (b *Backoff) setInterval(next time.Duration) {
	if next == b.interval {
		return
	}
	b.interval = next
	select {
	case b.changed <- struct{}{}:
	default:
	}
}
