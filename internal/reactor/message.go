// Package reactor implements the poll-dedupe-react control loop: it
// tracks which messages have already been handled, paces reactions with
// randomized human-like delay, and adapts its polling interval to error
// pressure from the remote service.
package reactor

import (
	"errors"
	"time"
)

// ErrRateLimited is returned by a ChannelClient when the remote service
// reports throttling. It is the only failure kind the backoff controller
// distinguishes from generic transient errors.
var ErrRateLimited = errors.New("rate limited by remote service")

// Message is a single fetched channel message.
// Immutable once fetched; held only for the duration of one poll cycle.
type Message struct {
	ID        string
	AuthorID  string
	AuthorBot bool
	Content   string
	PostedAt  time.Time
}
