package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"social-service/internal/apperror"
	"social-service/internal/mocks"
	"social-service/internal/models"
	"social-service/internal/ws"
)

type circleFixture struct {
	circleRepo *mocks.CircleRepositoryMock
	friendRepo *mocks.FriendRepositoryMock
	publisher  *mocks.PublisherMock
	router     *gin.Engine
}

func newCircleFixture(uid string) *circleFixture {
	f := &circleFixture{
		circleRepo: new(mocks.CircleRepositoryMock),
		friendRepo: new(mocks.FriendRepositoryMock),
		publisher:  new(mocks.PublisherMock),
	}
	handler := NewCircleHandler(f.circleRepo, f.friendRepo, ws.NewHub(), f.publisher)
	f.router = gin.New()
	f.router.Use(authAs(uid))
	f.router.POST("/circles", handler.CreateCircle)
	f.router.GET("/circles", handler.ListMine)
	f.router.GET("/circles/matches", handler.Matches)
	f.router.GET("/circles/:circle_id", handler.GetCircle)
	f.router.POST("/circles/:circle_id/join", handler.Join)
	f.router.POST("/circles/:circle_id/invite", handler.Invite)
	f.router.DELETE("/circles/:circle_id/members/me", handler.Leave)
	return f
}

func TestCreateCircle(t *testing.T) {
	f := newCircleFixture("user-1")
	f.circleRepo.On("CreateCircle", mock.Anything, "Morning Walkers", "steps", "early_bird", 8, "user-1").
		Return(models.Circle{ID: "circle-1", Name: "Morning Walkers", Goal: "steps", MaxMembers: 8, MemberCount: 1}, nil)

	rec := perform(f.router, http.MethodPost, "/circles", gin.H{
		"name": "Morning Walkers", "goal": "steps", "tendency": "early_bird", "max_members": 8,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var circle models.Circle
	decodeBody(t, rec, &circle)
	assert.Equal(t, "circle-1", circle.ID)
	assert.Equal(t, 1, circle.MemberCount)
}

func TestCreateCircleRejectsBadCapacity(t *testing.T) {
	f := newCircleFixture("user-1")

	rec := perform(f.router, http.MethodPost, "/circles", gin.H{
		"name": "Solo", "goal": "steps", "max_members": 1,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.circleRepo.AssertNotCalled(t, "CreateCircle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchesRanksByTendencyStreakFill(t *testing.T) {
	f := newCircleFixture("user-1")
	f.circleRepo.On("FindOpenCircles", mock.Anything, "steps", "user-1").Return([]models.Circle{
		{ID: "plain", Goal: "steps", Streak: 9, MemberCount: 2, MaxMembers: 8},
		{ID: "match-low", Goal: "steps", Tendency: "early_bird", Streak: 1, MemberCount: 2, MaxMembers: 8},
		{ID: "match-high", Goal: "steps", Tendency: "early_bird", Streak: 5, MemberCount: 2, MaxMembers: 8},
	}, nil)

	rec := perform(f.router, http.MethodGet, "/circles/matches?goal=steps&tendency=early_bird", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Circles []models.Circle `json:"circles"`
	}
	decodeBody(t, rec, &body)
	ids := []string{body.Circles[0].ID, body.Circles[1].ID, body.Circles[2].ID}
	assert.Equal(t, []string{"match-high", "match-low", "plain"}, ids)
}

func TestMatchesRequiresGoal(t *testing.T) {
	f := newCircleFixture("user-1")

	rec := perform(f.router, http.MethodGet, "/circles/matches", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.circleRepo.AssertNotCalled(t, "FindOpenCircles", mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinCircleFull(t *testing.T) {
	f := newCircleFixture("user-1")
	f.circleRepo.On("AddMember", mock.Anything, "circle-1", "user-1").
		Return(apperror.Conflict("this circle is full"))

	rec := perform(f.router, http.MethodPost, "/circles/circle-1/join", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "circle is full")
	f.circleRepo.AssertNotCalled(t, "GetCircle", mock.Anything, mock.Anything)
}

func TestJoinCircle(t *testing.T) {
	f := newCircleFixture("user-1")
	f.circleRepo.On("AddMember", mock.Anything, "circle-1", "user-1").Return(nil)
	f.circleRepo.On("GetCircle", mock.Anything, "circle-1").
		Return(models.Circle{ID: "circle-1", MemberCount: 3, MaxMembers: 8}, nil)

	rec := perform(f.router, http.MethodPost, "/circles/circle-1/join", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var circle models.Circle
	decodeBody(t, rec, &circle)
	assert.Equal(t, 3, circle.MemberCount)
}

func TestGetCircleMembersOnly(t *testing.T) {
	f := newCircleFixture("user-1")
	f.circleRepo.On("IsMember", mock.Anything, "circle-1", "user-1").Return(false, nil)

	rec := perform(f.router, http.MethodGet, "/circles/circle-1", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.circleRepo.AssertNotCalled(t, "GetCircle", mock.Anything, mock.Anything)
}

func TestInviteRequiresMembership(t *testing.T) {
	f := newCircleFixture("user-1")
	f.circleRepo.On("IsMember", mock.Anything, "circle-1", "user-1").Return(false, nil)

	rec := perform(f.router, http.MethodPost, "/circles/circle-1/invite", gin.H{"to_user_id": "user-2"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.friendRepo.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInviteFullCircle(t *testing.T) {
	f := newCircleFixture("user-1")
	f.circleRepo.On("IsMember", mock.Anything, "circle-1", "user-1").Return(true, nil)
	f.circleRepo.On("GetCircle", mock.Anything, "circle-1").
		Return(models.Circle{ID: "circle-1", MemberCount: 8, MaxMembers: 8}, nil)

	rec := perform(f.router, http.MethodPost, "/circles/circle-1/invite", gin.H{"to_user_id": "user-2"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	f.friendRepo.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInviteCreatesCircleInviteRequest(t *testing.T) {
	f := newCircleFixture("user-1")
	f.circleRepo.On("IsMember", mock.Anything, "circle-1", "user-1").Return(true, nil)
	f.circleRepo.On("GetCircle", mock.Anything, "circle-1").
		Return(models.Circle{ID: "circle-1", MemberCount: 3, MaxMembers: 8}, nil)
	f.friendRepo.On("CreateRequest", mock.Anything, "user-1", "user-2", models.RequestKindCircleInvite, mock.Anything, "join us").
		Return(models.FriendRequest{ID: "req-1", Kind: models.RequestKindCircleInvite}, nil)
	f.publisher.On("Publish", mock.Anything, "social.circle.invited", mock.Anything).Return(nil)

	rec := perform(f.router, http.MethodPost, "/circles/circle-1/invite", gin.H{"to_user_id": "user-2", "message": "join us"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	f.friendRepo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestLeaveCircleIdempotent(t *testing.T) {
	f := newCircleFixture("user-1")
	f.circleRepo.On("RemoveMember", mock.Anything, "circle-1", "user-1").Return(nil)

	rec := perform(f.router, http.MethodDelete, "/circles/circle-1/members/me", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	f.circleRepo.AssertExpectations(t)
}
