package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nostrcore/strtr/pkg/event"
	"github.com/nostrcore/strtr/pkg/filter"
	"github.com/nostrcore/strtr/pkg/pool"
	"github.com/nostrcore/strtr/pkg/store"
)

func id(c byte) string     { return strings.Repeat(string(rune(c)), 64) }
func pubkey(c byte) string { return strings.Repeat(string(rune(c)), 64) }
func sig(c byte) string    { return strings.Repeat(string(rune(c)), 128) }

func TestIngestDuplicate(t *testing.T) {
	ig := New(store.NewRepository(), pool.New())
	ev := &event.Event{ID: id('1'), Pubkey: pubkey('a'), Kind: 1, Sig: sig('a')}

	res := ig.Ingest(context.Background(), ev)
	require.True(t, res.Accepted)

	res = ig.Ingest(context.Background(), ev)
	assert.True(t, res.Accepted)
	assert.Equal(t, "duplicate: already have this event", res.Message)
}

func TestIngestParameterizedWithoutDTag(t *testing.T) {
	ig := New(store.NewRepository(), pool.New())
	ev := &event.Event{ID: id('1'), Pubkey: pubkey('a'), Kind: 30000, Sig: sig('a')}

	res := ig.Ingest(context.Background(), ev)
	assert.False(t, res.Accepted)
	assert.Equal(t, "error: no d-tag in parametarized replaceable event", res.Message)
}

func TestIngestInvalidEventRejected(t *testing.T) {
	ig := New(store.NewRepository(), pool.New())
	ev := &event.Event{ID: id('1'), Pubkey: "not-hex", Kind: 1, Sig: sig('a')}

	res := ig.Ingest(context.Background(), ev)
	assert.False(t, res.Accepted)
	assert.Contains(t, res.Message, "invalid:")
}

type capturingSink struct{ delivered []*event.Event }

func (s *capturingSink) Deliver(_ string, ev *event.Event) error {
	s.delivered = append(s.delivered, ev)
	return nil
}

func TestIngestEphemeralBroadcastsButNotStored(t *testing.T) {
	repo := store.NewRepository()
	p := pool.New()
	ig := New(repo, p)

	sink := &capturingSink{}
	p.Register(&pool.Subscription{
		PeerID: "peer", SubID: "sub",
		Filters: []*filter.Filter{{Kinds: []int{20000}}},
		Sink:    sink,
	})

	ev := &event.Event{ID: id('1'), Pubkey: pubkey('a'), Kind: 20000, Sig: sig('a')}
	res := ig.Ingest(context.Background(), ev)
	require.True(t, res.Accepted)
	require.Len(t, sink.delivered, 1)

	out := repo.Query([]*filter.Filter{{Kinds: []int{20000}}})
	assert.Empty(t, out, "ephemeral events are never stored, only broadcast")
}
