package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/apperror"
	"social-service/internal/events"
	"social-service/internal/middleware"
	"social-service/internal/models"
	"social-service/internal/repositories"
	"social-service/internal/ws"
)

// ConversationHandler owns 1:1 messaging. A conversation's identity is derived
// from its participant pair, so sending to a user implicitly gets or creates
// the single thread between the two.
type ConversationHandler struct {
	convRepo  repositories.ConversationRepository
	userRepo  repositories.UserRepository
	hub       *ws.Hub
	publisher events.Publisher
}

func NewConversationHandler(convRepo repositories.ConversationRepository, userRepo repositories.UserRepository, hub *ws.Hub, publisher events.Publisher) *ConversationHandler {
	return &ConversationHandler{
		convRepo:  convRepo,
		userRepo:  userRepo,
		hub:       hub,
		publisher: publisher,
	}
}

type sendMessageInput struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// SendMessage handles POST /api/messages. The message insert, last-message
// update and the receiver's unread increment commit as one unit; the ws
// broadcast and the notification event follow only after the commit.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)

	var input sendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver_id and content are required"})
		return
	}
	if input.ReceiverID == uid {
		respondError(c, apperror.Conflict("cannot message yourself"), "")
		return
	}

	conv, err := h.convRepo.GetOrCreateConversation(c.Request.Context(), uid, input.ReceiverID)
	if err != nil {
		respondError(c, err, "failed to open conversation")
		return
	}

	msg, err := h.convRepo.AppendMessage(c.Request.Context(), conv, uid, input.Content)
	if err != nil {
		respondError(c, err, "failed to send message")
		return
	}

	h.hub.BroadcastMessage(conv.ID, msg)

	env := events.NewEnvelope("message_created", requestID(c), map[string]any{
		"message_id":      msg.ID,
		"conversation_id": msg.ConversationID,
		"sender_id":       msg.SenderID,
		"receiver_id":     msg.ReceiverID,
	})
	if err := h.publisher.Publish(c.Request.Context(), events.KeyMessageCreated, env); err != nil {
		logPublishFailure(events.KeyMessageCreated, err)
	}

	c.JSON(http.StatusCreated, msg)
}

// ListConversations handles GET /api/conversations, hydrating the other
// participant of each thread from the users mirror.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)

	summaries, err := h.convRepo.ListConversations(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "failed to list conversations")
		return
	}

	otherIDs := make([]string, 0, len(summaries))
	for _, s := range summaries {
		otherIDs = append(otherIDs, s.OtherUserID)
	}
	users, err := h.userRepo.GetUsersByIDs(c.Request.Context(), otherIDs)
	if err != nil {
		respondError(c, err, "failed to load conversation partners")
		return
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	type conversationView struct {
		models.ConversationSummary
		OtherUser models.User `json:"other_user"`
	}
	views := make([]conversationView, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, conversationView{ConversationSummary: s, OtherUser: byID[s.OtherUserID]})
	}
	c.JSON(http.StatusOK, gin.H{"conversations": views})
}

// ListMessages handles GET /api/conversations/:conversation_id/messages,
// ascending by creation time. Participants only.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	conversationID := c.Param("conversation_id")

	conv, err := h.convRepo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err, "failed to load conversation")
		return
	}
	if !conv.HasParticipant(uid) {
		respondError(c, apperror.PermissionDenied("not a participant of this conversation"), "")
		return
	}

	messages, err := h.convRepo.ListMessages(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// MarkRead handles POST /api/conversations/:conversation_id/read. Resets the
// caller's unread counter to zero; repeated calls are no-ops.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	conversationID := c.Param("conversation_id")

	conv, err := h.convRepo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err, "failed to load conversation")
		return
	}
	if !conv.HasParticipant(uid) {
		respondError(c, apperror.PermissionDenied("not a participant of this conversation"), "")
		return
	}

	if err := h.convRepo.MarkRead(c.Request.Context(), conversationID, uid); err != nil {
		respondError(c, err, "failed to mark conversation read")
		return
	}
	h.hub.BroadcastRead(conversationID, uid)
	c.Status(http.StatusNoContent)
}
