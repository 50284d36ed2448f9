package store

import (
	"sync"

	"github.com/nostrcore/strtr/pkg/event"
)

// ReplaceResult is the outcome of offering an event to the
// replaceable-event tracker.
type ReplaceResult struct {
	Address    string
	Overwritten *event.Event // non-nil if an existing event was displaced
	ToBeStored  *event.Event // non-nil if this event should be stored
}

// ReplaceableTracker maps a replaceable address to the currently
// retained winning event for that address.
type ReplaceableTracker struct {
	mu      sync.Mutex
	current map[string]*event.Event
}

// NewReplaceableTracker returns an empty tracker.
func NewReplaceableTracker() *ReplaceableTracker {
	return &ReplaceableTracker{current: make(map[string]*event.Event)}
}

// Replace offers ev to the tracker. If no entry exists for ev's
// address, ev is stored and returned as ToBeStored. If an entry
// exists and ev is newer by event ordering, ev replaces it and the
// displaced event is returned as Overwritten. Otherwise the existing
// entry is kept and both result fields are nil.
func (t *ReplaceableTracker) Replace(ev *event.Event) ReplaceResult {
	addr := ev.Address()
	t.mu.Lock()
	defer t.mu.Unlock()
	existing, ok := t.current[addr]
	if !ok {
		t.current[addr] = ev
		return ReplaceResult{Address: addr, ToBeStored: ev}
	}
	if event.Less(ev, existing) {
		t.current[addr] = ev
		return ReplaceResult{Address: addr, Overwritten: existing, ToBeStored: ev}
	}
	return ReplaceResult{Address: addr}
}

// Delete removes the entry for addr if present, returning the removed
// event, or nil if there was none.
func (t *ReplaceableTracker) Delete(addr string) *event.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	ev, ok := t.current[addr]
	if !ok {
		return nil
	}
	delete(t.current, addr)
	return ev
}

// Get returns the currently retained event for addr, or nil.
func (t *ReplaceableTracker) Get(addr string) *event.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current[addr]
}
