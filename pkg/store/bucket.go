package store

import (
	"sort"
	"sync"

	"github.com/nostrcore/strtr/pkg/event"
	"github.com/nostrcore/strtr/pkg/filter"
)

// Bucket is a sequence of managed events sorted ascending by
// event.Less (oldest first, newest last): index i precedes index i+1
// whenever events[i+1] is newer. Insert is an insertion-sort sift
// suited to the near-monotonic arrival pattern real traffic exhibits;
// Query walks backward from a binary-search start index so results
// come out newest-first.
type Bucket struct {
	mu     sync.RWMutex
	events []*Managed
}

// NewBucket returns an empty bucket.
func NewBucket() *Bucket {
	return &Bucket{}
}

// Insert appends mev and sifts it leftward by adjacent swaps until the
// ascending ordering invariant holds again. Amortized O(1) for
// near-monotonic arrivals, worst case O(n).
func (b *Bucket) Insert(mev *Managed) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, mev)
	i := len(b.events) - 1
	for i > 0 && event.Less(b.events[i-1].Event, b.events[i].Event) {
		b.events[i], b.events[i-1] = b.events[i-1], b.events[i]
		i--
	}
}

// Size returns the number of managed events held, including deleted
// ones; deleted events are never removed from a bucket.
func (b *Bucket) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}

// startIndex returns the largest index i such that events[i].CreatedAt
// <= until, or -1 if every element is newer than until. Caller must
// hold b.mu.
func (b *Bucket) startIndex(until *int64) int {
	n := len(b.events)
	if until == nil {
		return n - 1
	}
	i := sort.Search(n, func(i int) bool {
		return b.events[i].Event.CreatedAt > *until
	})
	return i - 1
}

// Query returns matching, non-deleted events in descending time order,
// walking backward from the until bound down to the since bound.
func (b *Bucket) Query(f *filter.Filter) []*event.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := b.startIndex(f.Until)
	if s < 0 {
		return nil
	}
	var out []*event.Event
	for i := s; i >= 0; i-- {
		mev := b.events[i]
		if f.Since != nil && mev.Event.CreatedAt < *f.Since {
			break
		}
		if mev.Deleted() {
			continue
		}
		if f.Match(mev.Event) {
			out = append(out, mev.Event)
		}
	}
	return out
}

// Cursor walks a bucket from its until bound backward toward older
// events, one at a time, for use as a head in the repository's
// multi-bucket merge.
type Cursor struct {
	b   *Bucket
	i   int
	end bool
}

// NewCursor returns a cursor positioned at the first candidate index
// for until.
func (b *Bucket) NewCursor(until *int64) *Cursor {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := b.startIndex(until)
	return &Cursor{b: b, i: s, end: s < 0}
}

// Peek returns the managed event at the cursor's current position
// without advancing, or nil if the cursor is exhausted.
func (c *Cursor) Peek() *Managed {
	c.b.mu.RLock()
	defer c.b.mu.RUnlock()
	if c.end || c.i < 0 {
		return nil
	}
	return c.b.events[c.i]
}

// Advance moves the cursor toward older events.
func (c *Cursor) Advance() {
	c.i--
	if c.i < 0 {
		c.end = true
	}
}
