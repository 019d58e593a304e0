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

// CircleHandler owns circle lifecycle, membership and matching.
type CircleHandler struct {
	circleRepo repositories.CircleRepository
	friendRepo repositories.FriendRepository
	hub        *ws.Hub
	publisher  events.Publisher
}

func NewCircleHandler(circleRepo repositories.CircleRepository, friendRepo repositories.FriendRepository, hub *ws.Hub, publisher events.Publisher) *CircleHandler {
	return &CircleHandler{
		circleRepo: circleRepo,
		friendRepo: friendRepo,
		hub:        hub,
		publisher:  publisher,
	}
}

type createCircleInput struct {
	Name       string `json:"name" binding:"required"`
	Goal       string `json:"goal" binding:"required"`
	Tendency   string `json:"tendency"`
	MaxMembers int    `json:"max_members" binding:"required,min=2,max=50"`
}

// CreateCircle handles POST /api/circles. The creator becomes the first
// member in the same transaction.
func (h *CircleHandler) CreateCircle(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)

	var input createCircleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, goal and max_members (2-50) are required"})
		return
	}

	circle, err := h.circleRepo.CreateCircle(c.Request.Context(), input.Name, input.Goal, input.Tendency, input.MaxMembers, uid)
	if err != nil {
		respondError(c, err, "failed to create circle")
		return
	}
	c.JSON(http.StatusCreated, circle)
}

// ListMine handles GET /api/circles.
func (h *CircleHandler) ListMine(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)

	circles, err := h.circleRepo.ListCirclesForUser(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "failed to list circles")
		return
	}
	if circles == nil {
		circles = []models.Circle{}
	}
	c.JSON(http.StatusOK, gin.H{"circles": circles})
}

// GetCircle handles GET /api/circles/:circle_id. Details are members-only.
func (h *CircleHandler) GetCircle(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	circleID := c.Param("circle_id")

	member, err := h.circleRepo.IsMember(c.Request.Context(), circleID, uid)
	if err != nil {
		respondError(c, err, "failed to check membership")
		return
	}
	if !member {
		respondError(c, apperror.PermissionDenied("not a member of this circle"), "")
		return
	}

	circle, err := h.circleRepo.GetCircle(c.Request.Context(), circleID)
	if err != nil {
		respondError(c, err, "failed to load circle")
		return
	}
	c.JSON(http.StatusOK, circle)
}

// Matches handles GET /api/circles/matches?goal=&tendency=. Candidates are
// open circles sharing the goal that the caller has not joined, ranked by
// tendency match, then streak, then fill.
func (h *CircleHandler) Matches(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)

	goal := c.Query("goal")
	if goal == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "goal is required"})
		return
	}

	circles, err := h.circleRepo.FindOpenCircles(c.Request.Context(), goal, uid)
	if err != nil {
		respondError(c, err, "failed to find matching circles")
		return
	}
	ranked := models.RankCircles(circles, c.Query("tendency"))
	if ranked == nil {
		ranked = []models.Circle{}
	}
	c.JSON(http.StatusOK, gin.H{"circles": ranked})
}

// Join handles POST /api/circles/:circle_id/join. Capacity is enforced under
// a row lock in the store, so concurrent joins cannot overfill the circle.
func (h *CircleHandler) Join(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	circleID := c.Param("circle_id")

	if err := h.circleRepo.AddMember(c.Request.Context(), circleID, uid); err != nil {
		respondError(c, err, "failed to join circle")
		return
	}

	h.hub.BroadcastCircleEvent(circleID, models.CircleEvent{Type: "member_joined", UserID: uid})
	circle, err := h.circleRepo.GetCircle(c.Request.Context(), circleID)
	if err != nil {
		respondError(c, err, "failed to load circle")
		return
	}
	c.JSON(http.StatusOK, circle)
}

type inviteInput struct {
	ToUserID string `json:"to_user_id" binding:"required"`
	Message  string `json:"message"`
}

// Invite handles POST /api/circles/:circle_id/invite. Members invite others
// through the friend-request machinery; the circle id travels as a typed
// field on the request.
func (h *CircleHandler) Invite(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	circleID := c.Param("circle_id")

	var input inviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to_user_id is required"})
		return
	}

	member, err := h.circleRepo.IsMember(c.Request.Context(), circleID, uid)
	if err != nil {
		respondError(c, err, "failed to check membership")
		return
	}
	if !member {
		respondError(c, apperror.PermissionDenied("only members can invite to a circle"), "")
		return
	}

	circle, err := h.circleRepo.GetCircle(c.Request.Context(), circleID)
	if err != nil {
		respondError(c, err, "failed to load circle")
		return
	}
	if circle.Full() {
		respondError(c, apperror.Conflict("this circle is full"), "")
		return
	}

	req, err := h.friendRepo.CreateRequest(c.Request.Context(), uid, input.ToUserID, models.RequestKindCircleInvite, &circleID, input.Message)
	if err != nil {
		respondError(c, err, "failed to send invitation")
		return
	}

	env := events.NewEnvelope("circle_invited", requestID(c), map[string]any{
		"request_id":   req.ID,
		"circle_id":    circleID,
		"from_user_id": uid,
		"to_user_id":   input.ToUserID,
	})
	if err := h.publisher.Publish(c.Request.Context(), events.KeyCircleInvited, env); err != nil {
		logPublishFailure(events.KeyCircleInvited, err)
	}

	c.JSON(http.StatusCreated, req)
}

// Leave handles POST /api/circles/:circle_id/leave. Leaving a circle you are
// not in is a no-op.
func (h *CircleHandler) Leave(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	circleID := c.Param("circle_id")

	if err := h.circleRepo.RemoveMember(c.Request.Context(), circleID, uid); err != nil {
		respondError(c, err, "failed to leave circle")
		return
	}
	h.hub.BroadcastCircleEvent(circleID, models.CircleEvent{Type: "member_left", UserID: uid})
	c.Status(http.StatusNoContent)
}
