package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nostrcore/strtr/pkg/event"
)

func TestIndexMultiValuedTagKeys(t *testing.T) {
	ev := &event.Event{
		ID: "e1",
		Tags: []event.Tag{
			{"e", "x"}, {"e", "y"}, {"p", "z"},
		},
	}
	assert.ElementsMatch(t, []string{"x", "y"}, ETagKeys(ev))
	assert.ElementsMatch(t, []string{"z"}, PTagKeys(ev))
}

func TestIndexCandidateBuckets(t *testing.T) {
	idx := NewIndex()
	m := NewManaged(&event.Event{ID: "e1"})
	idx.Insert(m, []string{"k1", "k2"})

	cands := idx.CandidateBuckets([]string{"k1", "k2", "missing"})
	require.Len(t, cands, 2)
	for _, c := range cands {
		assert.Equal(t, 1, c.Bucket.Size())
	}
}
