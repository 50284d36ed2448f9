package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nostrcore/strtr/pkg/event"
)

func ptr(i int64) *int64 { return &i }
func iptr(i int) *int    { return &i }

func TestTriviallyUnsatisfiable(t *testing.T) {
	require.True(t, (&Filter{IDs: []string{}}).TriviallyUnsatisfiable())
	require.True(t, (&Filter{Since: ptr(10), Until: ptr(5)}).TriviallyUnsatisfiable())
	require.True(t, (&Filter{Limit: iptr(0)}).TriviallyUnsatisfiable())
	require.False(t, (&Filter{}).TriviallyUnsatisfiable())
	require.False(t, (&Filter{Authors: []string{"a"}}).TriviallyUnsatisfiable())
}

func TestMatch(t *testing.T) {
	ev := &event.Event{
		ID:        "id1",
		Pubkey:    "pub1",
		Kind:      1,
		CreatedAt: 100,
		Tags:      []event.Tag{{"e", "target"}},
		Content:   "Hello World",
	}

	assert.True(t, (&Filter{}).Match(ev))
	assert.True(t, (&Filter{Authors: []string{"pub1"}}).Match(ev))
	assert.False(t, (&Filter{Authors: []string{"other"}}).Match(ev))
	assert.True(t, (&Filter{Kinds: []int{1, 2}}).Match(ev))
	assert.False(t, (&Filter{Kinds: []int{2}}).Match(ev))
	assert.True(t, (&Filter{Since: ptr(50), Until: ptr(150)}).Match(ev))
	assert.False(t, (&Filter{Since: ptr(150)}).Match(ev))
	assert.True(t, (&Filter{Tags: map[string][]string{"#e": {"target"}}}).Match(ev))
	assert.False(t, (&Filter{Tags: map[string][]string{"#e": {"other"}}}).Match(ev))
	assert.True(t, (&Filter{Search: "hello"}).Match(ev))
	assert.False(t, (&Filter{Search: "goodbye"}).Match(ev))
}

func TestEffectiveLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, (&Filter{}).EffectiveLimit())
	assert.Equal(t, 10, (&Filter{Limit: iptr(10)}).EffectiveLimit())
	assert.Equal(t, MaxLimit, (&Filter{Limit: iptr(10000)}).EffectiveLimit())
	assert.Equal(t, 0, (&Filter{Limit: iptr(-1)}).EffectiveLimit())
}
