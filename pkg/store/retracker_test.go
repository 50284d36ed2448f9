package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nostrcore/strtr/pkg/event"
)

func TestReplaceableTrackerFirstWins(t *testing.T) {
	tr := NewReplaceableTracker()
	ev := &event.Event{ID: "e1", Pubkey: "A", Kind: 0}
	res := tr.Replace(ev)
	require.Equal(t, ev, res.ToBeStored)
	assert.Nil(t, res.Overwritten)
}

func TestReplaceableTrackerNewerWins(t *testing.T) {
	tr := NewReplaceableTracker()
	older := &event.Event{ID: "e1", Pubkey: "A", Kind: 0, CreatedAt: 1}
	newer := &event.Event{ID: "e2", Pubkey: "A", Kind: 0, CreatedAt: 2}
	tr.Replace(older)
	res := tr.Replace(newer)
	assert.Equal(t, newer, res.ToBeStored)
	assert.Equal(t, older, res.Overwritten)
}

func TestReplaceableTrackerTieBreakSmallerID(t *testing.T) {
	tr := NewReplaceableTracker()
	a := &event.Event{ID: "aaa", Pubkey: "A", Kind: 0, CreatedAt: 1}
	b := &event.Event{ID: "bbb", Pubkey: "A", Kind: 0, CreatedAt: 1}
	tr.Replace(b)
	res := tr.Replace(a)
	assert.Equal(t, a, res.ToBeStored, "lexicographically smaller id is considered newer")
	assert.Equal(t, b, res.Overwritten)

	// once a wins, a later b should not displace it again
	res2 := tr.Replace(b)
	assert.Nil(t, res2.ToBeStored)
	assert.Nil(t, res2.Overwritten)
}

func TestReplaceableTrackerDelete(t *testing.T) {
	tr := NewReplaceableTracker()
	ev := &event.Event{ID: "e1", Pubkey: "A", Kind: 0}
	tr.Replace(ev)
	removed := tr.Delete(ev.Address())
	assert.Equal(t, ev, removed)
	assert.Nil(t, tr.Delete(ev.Address()))
}
