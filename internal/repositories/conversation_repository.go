package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"social-service/internal/apperror"
	"social-service/internal/models"
)

// ConversationRepository persists 1:1 threads, their append-only message logs
// and per-participant unread counters.
type ConversationRepository interface {
	GetOrCreateConversation(ctx context.Context, uidA, uidB string) (models.Conversation, error)
	GetConversation(ctx context.Context, id string) (models.Conversation, error)
	ListConversations(ctx context.Context, uid string) ([]models.ConversationSummary, error)
	AppendMessage(ctx context.Context, conv models.Conversation, senderID, content string) (models.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID, uid string) error
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// GetOrCreateConversation looks up the thread by its deterministic id, creating
// it if absent. Two racing creators converge on the same row because the id is
// the primary key and the insert is ON CONFLICT DO NOTHING.
func (r *ConversationRepo) GetOrCreateConversation(ctx context.Context, uidA, uidB string) (models.Conversation, error) {
	userA, userB := uidA, uidB
	if userA > userB {
		userA, userB = userB, userA
	}
	id := models.ConversationID(uidA, uidB)

	if _, err := r.db.ExecContext(ctx, `INSERT INTO conversations (id, user_a_id, user_b_id)
        VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`, id, userA, userB); err != nil {
		return models.Conversation{}, wrapStore(err)
	}
	if _, err := r.db.ExecContext(ctx, `INSERT INTO conversation_unread (conversation_id, user_id, unread)
        VALUES ($1, $2, 0), ($1, $3, 0) ON CONFLICT DO NOTHING`, id, userA, userB); err != nil {
		return models.Conversation{}, wrapStore(err)
	}

	return r.GetConversation(ctx, id)
}

// GetConversation fetches a thread by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, id string) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, user_a_id, user_b_id, last_message, created_at
        FROM conversations WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, apperror.NotFound("conversation not found")
	}
	return conv, wrapStore(err)
}

// ListConversations returns the user's threads with their own unread counts.
func (r *ConversationRepo) ListConversations(ctx context.Context, uid string) ([]models.ConversationSummary, error) {
	var summaries []models.ConversationSummary
	err := r.db.SelectContext(ctx, &summaries, `SELECT c.id, c.user_a_id, c.user_b_id, c.last_message, c.created_at,
            CASE WHEN c.user_a_id=$1 THEN c.user_b_id ELSE c.user_a_id END AS other_user_id,
            COALESCE(u.unread, 0) AS unread
        FROM conversations c
        LEFT JOIN conversation_unread u ON u.conversation_id = c.id AND u.user_id = $1
        WHERE c.user_a_id=$1 OR c.user_b_id=$1
        ORDER BY c.created_at DESC`, uid)
	return summaries, wrapStore(err)
}

// AppendMessage stores a message and applies its side effects as one atomic
// unit: append to the log, refresh last_message, and bump the receiver's unread
// counter with an atomic increment so concurrent sends never lose updates.
func (r *ConversationRepo) AppendMessage(ctx context.Context, conv models.Conversation, senderID, content string) (models.Message, error) {
	receiverID := conv.OtherParticipant(senderID)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, wrapStore(err)
	}
	defer tx.Rollback()

	var msg models.Message
	if err := tx.QueryRowxContext(ctx, `INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, conversation_id, sender_id, receiver_id, content, created_at`,
		uuid.NewString(), conv.ID, senderID, receiverID, content).StructScan(&msg); err != nil {
		return models.Message{}, wrapStore(err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE conversations SET last_message=$2 WHERE id=$1`, conv.ID, content); err != nil {
		return models.Message{}, wrapStore(err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO conversation_unread (conversation_id, user_id, unread)
        VALUES ($1, $2, 1)
        ON CONFLICT (conversation_id, user_id) DO UPDATE SET unread = conversation_unread.unread + 1`,
		conv.ID, receiverID); err != nil {
		return models.Message{}, wrapStore(err)
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, wrapStore(err)
	}
	return msg, nil
}

// ListMessages returns the conversation's messages ordered by creation time
// ascending.
func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, conversation_id, sender_id, receiver_id, content, created_at
        FROM messages WHERE conversation_id=$1
        ORDER BY created_at ASC`, conversationID)
	return msgs, wrapStore(err)
}

// MarkRead zeroes the user's unread counter. Idempotent.
func (r *ConversationRepo) MarkRead(ctx context.Context, conversationID, uid string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO conversation_unread (conversation_id, user_id, unread)
        VALUES ($1, $2, 0)
        ON CONFLICT (conversation_id, user_id) DO UPDATE SET unread = 0`, conversationID, uid)
	return wrapStore(err)
}
