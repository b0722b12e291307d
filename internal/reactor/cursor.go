package reactor

import "sync"

// Cursor holds the id of the last message the loop has committed to
// having processed. Once set it never moves backward within the fetch
// batch's ordering; it is advanced once per cycle, after the whole delta
// has been triaged.
type Cursor struct {
	mu         sync.Mutex
	lastSeenID string
	set        bool
}

// NewCursor creates an unset cursor.
func NewCursor() *Cursor {
	return &Cursor{}
}

// Restore sets the cursor from a persisted position.
func (c *Cursor) Restore(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeenID = id
	c.set = true
}

// LastSeen returns the current position and whether one is set.
func (c *Cursor) LastSeen() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeenID, c.set
}

// Advance moves the cursor to the latest triaged message id.
func (c *Cursor) Advance(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeenID = id
	c.set = true
}

// computeDelta returns the messages strictly newer than the cursor, in
// chronological order (oldest of the new first), so reactions are applied
// in posting order. The batch must be ordered newest-first.
//
// When the cursor is unset, or its message has fallen out of the fetch
// window, only the latest message is returned. Reacting to a burst of
// unknown size after startup or downtime would be an obvious giveaway,
// so the delta deliberately under-approximates.
func computeDelta(c *Cursor, batch []Message) []Message {
	if len(batch) == 0 {
		return nil
	}

	latest := batch[0]
	lastSeen, ok := c.LastSeen()
	if ok && latest.ID == lastSeen {
		return nil
	}

	if ok {
		for i, msg := range batch {
			if msg.ID == lastSeen {
				delta := make([]Message, 0, i)
				for j := i - 1; j >= 0; j-- {
					delta = append(delta, batch[j])
				}
				return delta
			}
		}
	}

	return []Message{latest}
}
