package event

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkHex(b byte, n int) string {
	return strings.Repeat(string(rune('a'+b%6)), n)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Replaceable, Classify(0))
	assert.Equal(t, Replaceable, Classify(3))
	assert.Equal(t, Regular, Classify(1))
	assert.Equal(t, Replaceable, Classify(10002))
	assert.Equal(t, Ephemeral, Classify(20001))
	assert.Equal(t, Parameterized, Classify(30023))
	assert.Equal(t, Regular, Classify(40000))
}

func TestAddress(t *testing.T) {
	ev := &Event{Kind: 30000, Pubkey: "abc", Tags: []Tag{{"d", "x"}}}
	require.Equal(t, "30000:abc:x", ev.Address())

	ev2 := &Event{Kind: 0, Pubkey: "abc"}
	require.Equal(t, "0:abc:", ev2.Address())
}

func TestValidate(t *testing.T) {
	ev := &Event{
		ID:     mkHex(0, 64),
		Pubkey: mkHex(1, 64),
		Sig:    mkHex(2, 128),
		Kind:   1,
	}
	require.NoError(t, ev.Validate())

	bad := *ev
	bad.ID = "too-short"
	require.Error(t, bad.Validate())

	badTag := *ev
	badTag.Tags = []Tag{{}}
	require.Error(t, badTag.Validate())
}

func TestLessOrdering(t *testing.T) {
	a := &Event{ID: mkHex(0, 64), CreatedAt: 100}
	b := &Event{ID: mkHex(1, 64), CreatedAt: 50}
	assert.True(t, Less(a, b), "higher created_at is newer")
	assert.False(t, Less(b, a))

	// tie on created_at: lexicographically smaller id is newer
	c := &Event{ID: "aaa", CreatedAt: 100}
	d := &Event{ID: "bbb", CreatedAt: 100}
	assert.True(t, Less(c, d))
	assert.False(t, Less(d, c))
}
