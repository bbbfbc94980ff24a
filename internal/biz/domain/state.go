package domain

import "time"

// Watermark tracks the highest message sequence processed so far.
// It never moves backwards.
type Watermark struct {
	seq int64
	set bool
}

// IsSet reports whether any message has been marked yet
func (w *Watermark) IsSet() bool {
	return w.set
}

// Value returns the current mark (0 when unset)
func (w *Watermark) Value() int64 {
	return w.seq
}

// Seen reports whether seq is at or below the mark
func (w *Watermark) Seen(seq int64) bool {
	return w.set && seq <= w.seq
}

// Advance moves the mark forward to seq
func (w *Watermark) Advance(seq int64) {
	if !w.set || seq > w.seq {
		w.seq = seq
		w.set = true
	}
}

// CooldownTable records when the bot last replied to each sender
type CooldownTable struct {
	last map[string]time.Time
}

// NewCooldownTable creates an empty cooldown table
func NewCooldownTable() *CooldownTable {
	return &CooldownTable{last: make(map[string]time.Time)}
}

// Active reports whether sender is still inside the cooldown window at now
func (c *CooldownTable) Active(senderID string, now time.Time, window time.Duration) bool {
	last, ok := c.last[senderID]
	if !ok {
		return false
	}
	return now.Sub(last) < window
}

// Record stores the reply time for sender
func (c *CooldownTable) Record(senderID string, t time.Time) {
	c.last[senderID] = t
}

// LastReply returns the last reply time for sender
func (c *CooldownTable) LastReply(senderID string) (time.Time, bool) {
	t, ok := c.last[senderID]
	return t, ok
}

// UsernameCache maps sender IDs to display names. Entries are never evicted.
type UsernameCache struct {
	names map[string]string
}

// NewUsernameCache creates an empty cache
func NewUsernameCache() *UsernameCache {
	return &UsernameCache{names: make(map[string]string)}
}

// Get returns the cached name for id
func (c *UsernameCache) Get(id string) (string, bool) {
	name, ok := c.names[id]
	return name, ok
}

// Put caches name for id
func (c *UsernameCache) Put(id, name string) {
	c.names[id] = name
}

// Len returns the number of cached names
func (c *UsernameCache) Len() int {
	return len(c.names)
}
