package reactor

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/logger"
)

// Scheduler owns the single repeating poll timer. Each arming applies a
// bounded random jitter on top of the backoff controller's current
// interval, so the effective period is interval + uniform(0, jitter).
// A busy flag guarantees a new poll cycle never starts while a previous
// one is still in flight; cycles run in their own goroutine so nothing
// ever blocks the timer.
type Scheduler struct {
	backoff *Backoff
	jitter  time.Duration
	cycle   func(ctx context.Context)
	log     *logger.Logger

	intn func(n int) int // injectable jitter source

	busy    atomic.Bool
	running sync.WaitGroup
}

// NewScheduler creates a scheduler driving the given cycle function.
func NewScheduler(backoff *Backoff, jitter time.Duration, cycle func(ctx context.Context), log *logger.Logger) *Scheduler {
	return &Scheduler{
		backoff: backoff,
		jitter:  jitter,
		cycle:   cycle,
		log:     log,
		intn:    rand.Intn,
	}
}

// Run drives the repeating timer until the context is cancelled. A
// backoff interval change replaces the pending timer immediately instead
// of waiting out the old period.
func (s *Scheduler) Run(ctx context.Context) {
	period := s.nextPeriod()
	s.log.Info().Dur("period", period).Msg("scheduler armed")

	timer := time.NewTimer(period)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			s.running.Wait()
			return

		case <-s.backoff.Changed():
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			period := s.nextPeriod()
			s.log.Info().Dur("period", period).Msg("scheduler re-armed")
			timer.Reset(period)

		case <-timer.C:
			s.trigger(ctx)
			timer.Reset(s.nextPeriod())
		}
	}
}

// trigger starts a poll cycle unless one is still in flight, in which
// case it is a no-op.
func (s *Scheduler) trigger(ctx context.Context) bool {
	if !s.busy.CompareAndSwap(false, true) {
		s.log.Debug().Msg("previous poll cycle still in flight, skipping")
		return false
	}

	s.running.Add(1)
	go func() {
		defer s.running.Done()
		defer s.busy.Store(false)
		s.cycle(ctx)
	}()

	return true
}

// nextPeriod derives the next timer period from the current backoff
// interval plus bounded random jitter.
func (s *Scheduler) nextPeriod() time.Duration {
	period := s.backoff.Interval()
	if s.jitter > 0 {
		period += time.Duration(s.intn(int(s.jitter/time.Millisecond)+1)) * time.Millisecond
	}
	return period
}
