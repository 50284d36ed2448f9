package store

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/nostrcore/strtr/pkg/event"
	"github.com/nostrcore/strtr/pkg/filter"
	"github.com/nostrcore/strtr/pkg/metrics"
)

// Outcome describes what happened to an event offered to Insert.
type Outcome int

const (
	// Stored means the event was accepted: newly admitted, or, for a
	// replaceable event that does not beat the retained one, accepted
	// without being kept.
	Stored Outcome = iota
	// Duplicated means this id was already stored; state unchanged.
	Duplicated
	// PreviouslyDeleted means this id was deleted before and is refused.
	PreviouslyDeleted
)

// Repository is the concurrent in-memory event store: the id map, the
// global bucket, the four secondary indices, the replaceable-event
// tracker, and the set of ids that have been deleted.
type Repository struct {
	mu sync.Mutex

	eventsByID *xsync.MapOf[string, *Managed]
	allEvents  *Bucket
	byAuthor   *Index
	byKind     *Index
	byETag     *Index
	byPTag     *Index
	reTracker  *ReplaceableTracker
	deletedIDs *xsync.MapOf[string, bool]
}

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{
		eventsByID: xsync.NewMapOf[string, *Managed](),
		allEvents:  NewBucket(),
		byAuthor:   NewIndex(),
		byKind:     NewIndex(),
		byETag:     NewIndex(),
		byPTag:     NewIndex(),
		reTracker:  NewReplaceableTracker(),
		deletedIDs: xsync.NewMapOf[string, bool](),
	}
}

// Insert admits ev into the repository per its handling class.
// Ephemeral events must never be passed here; callers route them
// straight to the subscription pool.
func (r *Repository) Insert(ev *event.Event) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(ev)
}

func (r *Repository) insertLocked(ev *event.Event) (Outcome, error) {
	if _, ok := r.eventsByID.Load(ev.ID); ok {
		return Duplicated, nil
	}
	if _, ok := r.deletedIDs.Load(ev.ID); ok {
		return PreviouslyDeleted, nil
	}

	if ev.Kind == 5 {
		r.store(ev)
		for _, t := range ev.Tags {
			if t.Name() == "e" && t.Value() != "" {
				if r.deleteByIDLocked(t.Value(), ev.Pubkey) {
					r.deletedIDs.Store(t.Value(), true)
				}
			}
		}
		for _, t := range ev.Tags {
			if t.Name() == "a" && t.Value() != "" {
				r.deleteByAddrLocked(t.Value(), ev.Pubkey)
			}
		}
		return Stored, nil
	}

	switch ev.Handling() {
	case event.Replaceable, event.Parameterized:
		res := r.reTracker.Replace(ev)
		if res.ToBeStored != nil {
			r.store(res.ToBeStored)
		}
		if res.Overwritten != nil {
			r.deleteByIDLocked(res.Overwritten.ID, ev.Pubkey)
		}
		return Stored, nil
	default:
		r.store(ev)
		return Stored, nil
	}
}

// store wraps ev in a new managed event and inserts the same instance
// into eventsByID, allEvents, and every applicable secondary index.
func (r *Repository) store(ev *event.Event) {
	mev := NewManaged(ev)
	r.eventsByID.Store(ev.ID, mev)
	r.allEvents.Insert(mev)
	r.byAuthor.Insert(mev, AuthorKeys(ev))
	r.byKind.Insert(mev, KindKeys(ev))
	r.byETag.Insert(mev, ETagKeys(ev))
	r.byPTag.Insert(mev, PTagKeys(ev))
}

// deleteByIDLocked flags the managed event for id as deleted if it
// exists, was authored by requester, and is not itself a deletion
// event. Returns whether it deleted anything.
func (r *Repository) deleteByIDLocked(id, requester string) bool {
	mev, ok := r.eventsByID.Load(id)
	if !ok {
		return false
	}
	if mev.Event.Pubkey != requester {
		return false
	}
	if mev.Event.Kind == 5 {
		return false
	}
	mev.MarkDeleted()
	return true
}

// deleteByAddrLocked removes the replaceable tracker's entry for addr
// if its author matches requester, then deletes the retained event by
// id.
func (r *Repository) deleteByAddrLocked(addr, requester string) {
	existing := r.reTracker.Get(addr)
	if existing == nil || existing.Pubkey != requester {
		return
	}
	r.reTracker.Delete(addr)
	r.deleteByIDLocked(existing.ID, requester)
}

// Query yields events matching any of filters, each filter
// independently contributing up to its effective limit in descending
// time order; results from distinct filters are concatenated without
// cross-filter dedup. Trivially unsatisfiable filters are skipped.
func (r *Repository) Query(filters []*filter.Filter) []*event.Event {
	var out []*event.Event
	for _, f := range filters {
		if f.TriviallyUnsatisfiable() {
			continue
		}
		out = append(out, r.queryOne(f)...)
	}
	metrics.QueryFanout.Observe(float64(len(out)))
	return out
}

func (r *Repository) queryOne(f *filter.Filter) []*event.Event {
	limit := f.EffectiveLimit()
	if limit == 0 {
		return nil
	}

	if f.IDs != nil {
		return firstN(r.allEvents.Query(f), limit)
	}

	type plan struct {
		buckets []Candidate
		total   int
	}
	var best *plan
	consider := func(cands []Candidate) {
		if cands == nil {
			return
		}
		total := 0
		for _, c := range cands {
			total += c.Bucket.Size()
		}
		p := &plan{buckets: cands, total: total}
		if best == nil || total < best.total || (total == best.total && len(cands) < len(best.buckets)) {
			best = p
		}
	}

	if f.Authors != nil {
		consider(r.byAuthor.CandidateBuckets(f.Authors))
	}
	if f.Kinds != nil {
		consider(r.byKind.CandidateBuckets(intKeys(f.Kinds)))
	}
	if vs, ok := f.Tags["#e"]; ok {
		consider(r.byETag.CandidateBuckets(vs))
	}
	if vs, ok := f.Tags["#p"]; ok {
		consider(r.byPTag.CandidateBuckets(vs))
	}

	if best == nil {
		return firstN(r.allEvents.Query(f), limit)
	}
	if len(best.buckets) == 1 {
		return firstN(best.buckets[0].Bucket.Query(f), limit)
	}
	buckets := make([]*Bucket, len(best.buckets))
	for i, c := range best.buckets {
		buckets[i] = c.Bucket
	}
	return mergeBuckets(buckets, f, limit)
}

func firstN(evs []*event.Event, n int) []*event.Event {
	if len(evs) <= n {
		return evs
	}
	return evs[:n]
}
