package reactor

import "time"

// Policy controls whether and when a reaction is attached to a message.
// Immutable after load.
type Policy struct {
	// Emojis is the candidate set; one is drawn uniformly per reaction.
	Emojis []string
	// ProbabilityPercent gates each message in [0,100].
	ProbabilityPercent int
	// MinDelay/MaxDelay bound the uniform base delay before reacting.
	MinDelay time.Duration
	MaxDelay time.Duration
	// ReadingPerChar adds simulated reading time per content character,
	// capped at MaxReading.
	ReadingPerChar time.Duration
	MaxReading     time.Duration
}

// PassesGate draws a uniform sample in [0,100) and reports whether the
// message should be reacted to.
func (p Policy) PassesGate(intn func(int) int) bool {
	return intn(100) < p.ProbabilityPercent
}

// PickEmoji draws one emoji from the candidate set.
func (p Policy) PickEmoji(intn func(int) int) string {
	if len(p.Emojis) == 1 {
		return p.Emojis[0]
	}
	return p.Emojis[intn(len(p.Emojis))]
}

// ReactionDelay computes the human-like delay before a reaction attempt:
// a uniform draw between MinDelay and MaxDelay plus capped reading time
// proportional to the message length.
func (p Policy) ReactionDelay(contentLen int, intn func(int) int) time.Duration {
	delay := p.MinDelay
	if spread := p.MaxDelay - p.MinDelay; spread > 0 {
		delay += time.Duration(intn(int(spread/time.Millisecond)+1)) * time.Millisecond
	}

	reading := time.Duration(contentLen) * p.ReadingPerChar
	if reading > p.MaxReading {
		reading = p.MaxReading
	}

	return delay + reading
}
