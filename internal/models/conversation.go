package models

import "time"

const conversationIDSeparator = "_"

// ConversationID derives the deterministic identity of a 1:1 thread from its
// participant pair. Sorting the pair first makes the result independent of who
// starts the conversation, which is the idempotence key preventing duplicate
// threads between the same two users.
func ConversationID(uidA, uidB string) string {
	if uidA > uidB {
		uidA, uidB = uidB, uidA
	}
	return uidA + conversationIDSeparator + uidB
}

// Conversation is a 1:1 message thread. UserAID sorts before UserBID.
type Conversation struct {
	ID          string    `db:"id" json:"id"`
	UserAID     string    `db:"user_a_id" json:"user_a_id"`
	UserBID     string    `db:"user_b_id" json:"user_b_id"`
	LastMessage string    `db:"last_message" json:"last_message,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// HasParticipant reports whether the user belongs to the conversation.
func (c Conversation) HasParticipant(uid string) bool {
	return c.UserAID == uid || c.UserBID == uid
}

// OtherParticipant returns the participant that is not self.
func (c Conversation) OtherParticipant(self string) string {
	if c.UserAID == self {
		return c.UserBID
	}
	return c.UserAID
}

// ConversationSummary is the per-caller view of a conversation.
type ConversationSummary struct {
	Conversation
	OtherUserID string `db:"other_user_id" json:"other_user_id"`
	Unread      int    `db:"unread" json:"unread"`
}

// Message is one entry in a conversation's append-only log, ordered by CreatedAt
// ascending. Messages are immutable once created.
type Message struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	SenderID       string    `db:"sender_id" json:"sender_id"`
	ReceiverID     string    `db:"receiver_id" json:"receiver_id"`
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ConversationEvent is broadcast over conversation websocket rooms.
type ConversationEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
	UserID  string   `json:"user_id,omitempty"`
}
