package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func backoffFixture() *Backoff {
	return NewBackoff(BackoffConfig{
		BaseInterval:       10 * time.Second,
		MaxInterval:        80 * time.Second,
		Multiplier:         2.0,
		ErrorThreshold:     3,
		RateLimitThreshold: 3,
	})
}

func TestBackoffMonotonicity(t *testing.T) {
	b := backoffFixture()

	// failures below threshold leave timing untouched
	b.OnFailure(FailureTransient)
	b.OnFailure(FailureTransient)
	assert.Equal(t, 10*time.Second, b.Interval())
	assert.Equal(t, 2, b.ConsecutiveErrors())

	// third consecutive failure doubles exactly once
	b.OnFailure(FailureTransient)
	assert.Equal(t, 20*time.Second, b.Interval())

	// a single success resets the streak and halves back toward baseline
	b.OnSuccess()
	assert.Equal(t, 10*time.Second, b.Interval())
	assert.Equal(t, 0, b.ConsecutiveErrors())

	// success at baseline never undershoots it
	b.OnSuccess()
	assert.Equal(t, 10*time.Second, b.Interval())
}

func TestBackoffClampsAtMax(t *testing.T) {
	b := backoffFixture()

	for i := 0; i < 20; i++ {
		b.OnFailure(FailureRateLimited)
	}

	assert.Equal(t, 80*time.Second, b.Interval())
}

func TestBackoffIsolatedErrorsBelowThreshold(t *testing.T) {
	b := backoffFixture()

	b.OnFailure(FailureTransient)
	b.OnSuccess()
	b.OnFailure(FailureTransient)
	b.OnSuccess()

	assert.Equal(t, 10*time.Second, b.Interval())
	assert.Equal(t, 0, b.ConsecutiveErrors())
}

func TestBackoffIndependentThresholds(t *testing.T) {
	b := NewBackoff(BackoffConfig{
		BaseInterval:       10 * time.Second,
		MaxInterval:        80 * time.Second,
		Multiplier:         2.0,
		ErrorThreshold:     5,
		RateLimitThreshold: 1,
	})

	// a single rate-limit hit escalates immediately
	b.OnFailure(FailureRateLimited)
	assert.Equal(t, 20*time.Second, b.Interval())

	b.OnSuccess()
	assert.Equal(t, 10*time.Second, b.Interval())

	// generic transient errors need a longer streak
	for i := 0; i < 4; i++ {
		b.OnFailure(FailureTransient)
	}
	assert.Equal(t, 10*time.Second, b.Interval())
	b.OnFailure(FailureTransient)
	assert.Equal(t, 20*time.Second, b.Interval())
}

func TestBackoffSignalsOnChange(t *testing.T) {
	b := backoffFixture()

	for i := 0; i < 3; i++ {
		b.OnFailure(FailureTransient)
	}

	select {
	case <-b.Changed():
	default:
		t.Fatal("expected a change signal after interval growth")
	}

	// recovery to baseline signals once more
	b.OnSuccess()
	select {
	case <-b.Changed():
	default:
		t.Fatal("expected a change signal after recovery")
	}

	// success at baseline changes nothing, so no signal
	b.OnSuccess()
	select {
	case <-b.Changed():
		t.Fatal("unexpected change signal at baseline")
	default:
	}
}
