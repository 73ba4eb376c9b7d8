package metadata

import (
	"sync"
)

// Ticket identifies one request for a key. Only the most recently issued
// ticket of a key is current.
type Ticket struct {
	Key string
	Seq uint64
}

// Tracker hands out monotonically increasing tickets per key so callers
// can drop results of requests that have been superseded. The zero value
// is ready to use.
type Tracker struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewTracker() *Tracker {
	return &Tracker{latest: map[string]uint64{}}
}

// bump issues the next sequence number of key. t.mu must be held.
func (t *Tracker) bump(key string) uint64 {
	if t.latest == nil {
		t.latest = map[string]uint64{}
	}
	t.latest[key]++
	return t.latest[key]
}

func (t *Tracker) Begin(key string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Ticket{Key: key, Seq: t.bump(key)}
}

func (t *Tracker) IsLatest(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[ticket.Key] == ticket.Seq
}

// Commit runs publish only if ticket is still the latest for its key.
// The check and publish happen under the tracker lock, so a newer
// request can't slip in between them.
func (t *Tracker) Commit(ticket Ticket, publish func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest[ticket.Key] != ticket.Seq {
		return false
	}
	publish()
	return true
}

// Forget invalidates every outstanding ticket for key.
func (t *Tracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bump(key)
}
