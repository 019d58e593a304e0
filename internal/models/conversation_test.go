package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationIDSymmetric(t *testing.T) {
	require.Equal(t, ConversationID("alice", "bob"), ConversationID("bob", "alice"))
	require.Equal(t, "alice_bob", ConversationID("bob", "alice"))
}

func TestConversationIDDistinctPairs(t *testing.T) {
	assert.NotEqual(t, ConversationID("a", "b"), ConversationID("a", "c"))
}

func TestOtherParticipant(t *testing.T) {
	conv := Conversation{ID: "a_b", UserAID: "a", UserBID: "b"}
	require.Equal(t, "b", conv.OtherParticipant("a"))
	require.Equal(t, "a", conv.OtherParticipant("b"))
	require.True(t, conv.HasParticipant("a"))
	require.False(t, conv.HasParticipant("c"))
}
