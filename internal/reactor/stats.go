package reactor

import (
	"sync/atomic"
	"time"
)

// Stats accumulates process-lifetime reaction counters.
// Counters only ever increase; increments may race between a pending
// reaction attempt and the next poll cycle, which is fine for atomics.
type Stats struct {
	startedAt time.Time
	reacted   atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// NewStats creates a stats accumulator anchored at the current time.
func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

func (s *Stats) MarkReacted() { s.reacted.Add(1) }
func (s *Stats) MarkSkipped() { s.skipped.Add(1) }
func (s *Stats) MarkFailed()  { s.failed.Add(1) }

// Snapshot is a best-effort point-in-time view of the counters.
type Snapshot struct {
	Reacted   int64
	Skipped   int64
	Failed    int64
	StartedAt time.Time
	Uptime    time.Duration
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Reacted:   s.reacted.Load(),
		Skipped:   s.skipped.Load(),
		Failed:    s.failed.Load(),
		StartedAt: s.startedAt,
		Uptime:    time.Since(s.startedAt),
	}
}
