package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationIDSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"Zed", "abe"},
		{"uid123", "uid12"},
		{"a", "b"},
	}
	for _, p := range pairs {
		ab, err := ConversationID(p[0], p[1])
		require.NoError(t, err)
		ba, err := ConversationID(p[1], p[0])
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	}
}

func TestConversationIDDistinctPartners(t *testing.T) {
	ids := map[string]bool{}
	for _, other := range []string{"b", "c", "bc", "ab", "b1"} {
		id, err := ConversationID("a", other)
		require.NoError(t, err)
		assert.False(t, ids[id], "collision on %s", id)
		ids[id] = true
	}
}

func TestConversationIDRejects(t *testing.T) {
	for _, p := range [][2]string{{"a", "a"}, {"", "b"}, {"a_b", "c"}} {
		_, err := ConversationID(p[0], p[1])
		assert.Error(t, err, "pair %v", p)
	}
}

func TestParseConversationID(t *testing.T) {
	parts, err := ParseConversationID("alice_bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, parts)

	for _, bad := range []string{"bob_alice", "alice", "a_b_c", "a_a"} {
		_, err := ParseConversationID(bad)
		assert.Error(t, err, bad)
	}
}

func TestNeedsUnreadBackfill(t *testing.T) {
	c := &Conversation{Participants: []string{"a", "b"}}
	assert.True(t, c.NeedsUnreadBackfill())

	c.UnreadCounts = map[string]int{"a": 3}
	assert.True(t, c.NeedsUnreadBackfill())

	c.UnreadCounts["b"] = 0
	assert.False(t, c.NeedsUnreadBackfill())
	assert.Equal(t, "b", c.Other("a"))
}
