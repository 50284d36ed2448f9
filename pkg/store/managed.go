// Package store implements the in-memory event repository: buckets,
// secondary indices, the replaceable-event tracker, and the repository
// that orchestrates insertion, deletion, and query planning.
package store

import (
	"go.uber.org/atomic"

	"github.com/nostrcore/strtr/pkg/event"
)

// Managed wraps an Event with a deletion flag shared by every index
// and bucket that references it, so marking an event deleted in one
// place is observed everywhere it's indexed.
type Managed struct {
	Event   *event.Event
	deleted atomic.Bool
}

// NewManaged wraps ev for insertion into the repository's structures.
func NewManaged(ev *event.Event) *Managed {
	return &Managed{Event: ev}
}

// Deleted reports whether this event has been flagged as deleted.
func (m *Managed) Deleted() bool {
	return m.deleted.Load()
}

// MarkDeleted flags this event as deleted.
func (m *Managed) MarkDeleted() {
	m.deleted.Store(true)
}
