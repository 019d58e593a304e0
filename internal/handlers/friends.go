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

// FriendHandler owns the friend-request lifecycle and the friendships derived
// from it. Circle invitations ride the same request machinery with kind
// circle_invite; accepting one also joins the circle.
type FriendHandler struct {
	friendRepo repositories.FriendRepository
	circleRepo repositories.CircleRepository
	userRepo   repositories.UserRepository
	hub        *ws.Hub
	publisher  events.Publisher
}

func NewFriendHandler(friendRepo repositories.FriendRepository, circleRepo repositories.CircleRepository, userRepo repositories.UserRepository, hub *ws.Hub, publisher events.Publisher) *FriendHandler {
	return &FriendHandler{
		friendRepo: friendRepo,
		circleRepo: circleRepo,
		userRepo:   userRepo,
		hub:        hub,
		publisher:  publisher,
	}
}

type sendRequestInput struct {
	ToUserID string `json:"to_user_id" binding:"required"`
	Message  string `json:"message"`
}

// SendRequest handles POST /api/friends/requests.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)

	var input sendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to_user_id is required"})
		return
	}

	req, err := h.friendRepo.CreateRequest(c.Request.Context(), uid, input.ToUserID, models.RequestKindFriend, nil, input.Message)
	if err != nil {
		respondError(c, err, "failed to send friend request")
		return
	}
	c.JSON(http.StatusCreated, req)
}

// AcceptRequest handles POST /api/friends/requests/:request_id/accept. Only
// the recipient may accept. For a circle invitation the join happens before
// the request resolves, so a full circle leaves the invitation pending
// instead of consuming it.
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	reqID := c.Param("request_id")

	req, err := h.friendRepo.GetRequest(c.Request.Context(), reqID)
	if err != nil {
		respondError(c, err, "failed to load request")
		return
	}
	if req.ToUserID != uid {
		respondError(c, apperror.PermissionDenied("only the recipient can respond to a request"), "")
		return
	}

	if req.Kind == models.RequestKindCircleInvite && req.CircleID != nil {
		if err := h.circleRepo.AddMember(c.Request.Context(), *req.CircleID, uid); err != nil {
			respondError(c, err, "failed to join circle")
			return
		}
		h.hub.BroadcastCircleEvent(*req.CircleID, models.CircleEvent{Type: "member_joined", UserID: uid})
	}

	resolved, err := h.friendRepo.ResolveRequest(c.Request.Context(), reqID, models.RequestAccepted)
	if err != nil {
		respondError(c, err, "failed to accept request")
		return
	}

	env := events.NewEnvelope("friend_request_accepted", requestID(c), map[string]any{
		"request_id":   resolved.ID,
		"kind":         resolved.Kind,
		"from_user_id": resolved.FromUserID,
		"to_user_id":   resolved.ToUserID,
		"circle_id":    resolved.CircleID,
	})
	if err := h.publisher.Publish(c.Request.Context(), events.KeyFriendRequestAccepted, env); err != nil {
		logPublishFailure(events.KeyFriendRequestAccepted, err)
	}

	c.JSON(http.StatusOK, resolved)
}

// RejectRequest handles POST /api/friends/requests/:request_id/reject.
func (h *FriendHandler) RejectRequest(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	reqID := c.Param("request_id")

	req, err := h.friendRepo.GetRequest(c.Request.Context(), reqID)
	if err != nil {
		respondError(c, err, "failed to load request")
		return
	}
	if req.ToUserID != uid {
		respondError(c, apperror.PermissionDenied("only the recipient can respond to a request"), "")
		return
	}

	resolved, err := h.friendRepo.ResolveRequest(c.Request.Context(), reqID, models.RequestRejected)
	if err != nil {
		respondError(c, err, "failed to reject request")
		return
	}
	c.JSON(http.StatusOK, resolved)
}

// ListFriends handles GET /api/friends, hydrating friend ids into mirrored
// user records.
func (h *FriendHandler) ListFriends(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)

	ids, err := h.friendRepo.ListFriendIDs(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "failed to list friends")
		return
	}

	users, err := h.userRepo.GetUsersByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err, "failed to load friend profiles")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"friends": users})
}

// ListPending handles GET /api/friends/requests, split by direction.
func (h *FriendHandler) ListPending(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)

	requests, err := h.friendRepo.ListPending(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "failed to list pending requests")
		return
	}
	c.JSON(http.StatusOK, models.SplitPending(requests, uid))
}

// RemoveFriend handles DELETE /api/friends/:user_id. Removing an absent
// friendship is a no-op.
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	other := c.Param("user_id")

	if err := h.friendRepo.RemoveFriendship(c.Request.Context(), uid, other); err != nil {
		respondError(c, err, "failed to remove friend")
		return
	}
	c.Status(http.StatusNoContent)
}
