package store

import (
	"container/heap"

	"github.com/nostrcore/strtr/pkg/event"
	"github.com/nostrcore/strtr/pkg/filter"
)

// headItem is one bucket cursor's current head, ordered by
// event.Less so the heap pops the newest head first.
type headItem struct {
	mev    *Managed
	cursor *Cursor
}

// headHeap is a max-heap (by event ordering) of bucket cursor heads.
type headHeap []*headItem

func (h headHeap) Len() int { return len(h) }
func (h headHeap) Less(i, j int) bool {
	return event.Less(h[i].mev.Event, h[j].mev.Event)
}
func (h headHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *headHeap) Push(x any)        { *h = append(*h, x.(*headItem)) }
func (h *headHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// mergeBuckets performs the multi-bucket merged query described in
// the repository's query planning: a max-heap seeded with each
// bucket's head, repeatedly popping the newest unseen event, stopping
// when the heap empties or limit is reached. Dedup is per-call.
func mergeBuckets(buckets []*Bucket, f *filter.Filter, limit int) []*event.Event {
	h := &headHeap{}
	heap.Init(h)
	for _, b := range buckets {
		c := b.NewCursor(f.Until)
		if mev := c.Peek(); mev != nil {
			heap.Push(h, &headItem{mev: mev, cursor: c})
		}
	}
	seen := make(map[string]bool)
	var out []*event.Event
	for h.Len() > 0 && len(out) < limit {
		top := heap.Pop(h).(*headItem)
		mev := top.mev
		if f.Since != nil && mev.Event.CreatedAt < *f.Since {
			// Every remaining item on this cursor is even older; drop
			// the cursor instead of re-pushing it.
			continue
		}
		if !seen[mev.Event.ID] {
			seen[mev.Event.ID] = true
			if !mev.Deleted() && f.Match(mev.Event) {
				out = append(out, mev.Event)
			}
		}
		top.cursor.Advance()
		if next := top.cursor.Peek(); next != nil {
			heap.Push(h, &headItem{mev: next, cursor: top.cursor})
		}
	}
	return out
}
