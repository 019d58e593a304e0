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

type friendFixture struct {
	friendRepo *mocks.FriendRepositoryMock
	circleRepo *mocks.CircleRepositoryMock
	userRepo   *mocks.UserRepositoryMock
	publisher  *mocks.PublisherMock
	router     *gin.Engine
}

func newFriendFixture(uid string) *friendFixture {
	f := &friendFixture{
		friendRepo: new(mocks.FriendRepositoryMock),
		circleRepo: new(mocks.CircleRepositoryMock),
		userRepo:   new(mocks.UserRepositoryMock),
		publisher:  new(mocks.PublisherMock),
	}
	handler := NewFriendHandler(f.friendRepo, f.circleRepo, f.userRepo, ws.NewHub(), f.publisher)
	f.router = gin.New()
	f.router.Use(authAs(uid))
	f.router.POST("/friends/requests", handler.SendRequest)
	f.router.POST("/friends/requests/:request_id/accept", handler.AcceptRequest)
	f.router.POST("/friends/requests/:request_id/reject", handler.RejectRequest)
	f.router.GET("/friends", handler.ListFriends)
	f.router.GET("/friends/requests", handler.ListPending)
	f.router.DELETE("/friends/:user_id", handler.RemoveFriend)
	return f
}

func TestSendRequest(t *testing.T) {
	f := newFriendFixture("user-1")
	f.friendRepo.On("CreateRequest", mock.Anything, "user-1", "user-2", models.RequestKindFriend, (*string)(nil), "hi").
		Return(models.FriendRequest{ID: "req-1", FromUserID: "user-1", ToUserID: "user-2", Status: models.RequestPending, Kind: models.RequestKindFriend}, nil)

	rec := perform(f.router, http.MethodPost, "/friends/requests", gin.H{"to_user_id": "user-2", "message": "hi"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var req models.FriendRequest
	decodeBody(t, rec, &req)
	assert.Equal(t, "req-1", req.ID)
	f.friendRepo.AssertExpectations(t)
}

func TestSendRequestDuplicateConflict(t *testing.T) {
	f := newFriendFixture("user-1")
	f.friendRepo.On("CreateRequest", mock.Anything, "user-1", "user-2", models.RequestKindFriend, (*string)(nil), "").
		Return(models.FriendRequest{}, apperror.Conflict("request already sent"))

	rec := perform(f.router, http.MethodPost, "/friends/requests", gin.H{"to_user_id": "user-2"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "request already sent")
}

func TestSendRequestMissingRecipient(t *testing.T) {
	f := newFriendFixture("user-1")

	rec := perform(f.router, http.MethodPost, "/friends/requests", gin.H{"message": "hi"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.friendRepo.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptRequest(t *testing.T) {
	f := newFriendFixture("user-2")
	pending := models.FriendRequest{ID: "req-1", FromUserID: "user-1", ToUserID: "user-2", Status: models.RequestPending, Kind: models.RequestKindFriend}
	accepted := pending
	accepted.Status = models.RequestAccepted
	f.friendRepo.On("GetRequest", mock.Anything, "req-1").Return(pending, nil)
	f.friendRepo.On("ResolveRequest", mock.Anything, "req-1", models.RequestAccepted).Return(accepted, nil)
	f.publisher.On("Publish", mock.Anything, "social.friend_request.accepted", mock.Anything).Return(nil)

	rec := perform(f.router, http.MethodPost, "/friends/requests/req-1/accept", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.friendRepo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	f.circleRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptRequestOnlyRecipient(t *testing.T) {
	f := newFriendFixture("user-1")
	pending := models.FriendRequest{ID: "req-1", FromUserID: "user-1", ToUserID: "user-2", Status: models.RequestPending}
	f.friendRepo.On("GetRequest", mock.Anything, "req-1").Return(pending, nil)

	rec := perform(f.router, http.MethodPost, "/friends/requests/req-1/accept", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.friendRepo.AssertNotCalled(t, "ResolveRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptRequestTwiceInvalidState(t *testing.T) {
	f := newFriendFixture("user-2")
	resolved := models.FriendRequest{ID: "req-1", FromUserID: "user-1", ToUserID: "user-2", Status: models.RequestAccepted}
	f.friendRepo.On("GetRequest", mock.Anything, "req-1").Return(resolved, nil)
	f.friendRepo.On("ResolveRequest", mock.Anything, "req-1", models.RequestAccepted).
		Return(models.FriendRequest{}, apperror.InvalidState("request already resolved"))

	rec := perform(f.router, http.MethodPost, "/friends/requests/req-1/accept", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already resolved")
}

func TestAcceptCircleInviteJoinsCircle(t *testing.T) {
	f := newFriendFixture("user-2")
	circleID := "circle-1"
	pending := models.FriendRequest{ID: "req-1", FromUserID: "user-1", ToUserID: "user-2", Status: models.RequestPending, Kind: models.RequestKindCircleInvite, CircleID: &circleID}
	accepted := pending
	accepted.Status = models.RequestAccepted
	f.friendRepo.On("GetRequest", mock.Anything, "req-1").Return(pending, nil)
	f.circleRepo.On("AddMember", mock.Anything, "circle-1", "user-2").Return(nil)
	f.friendRepo.On("ResolveRequest", mock.Anything, "req-1", models.RequestAccepted).Return(accepted, nil)
	f.publisher.On("Publish", mock.Anything, "social.friend_request.accepted", mock.Anything).Return(nil)

	rec := perform(f.router, http.MethodPost, "/friends/requests/req-1/accept", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.circleRepo.AssertExpectations(t)
	f.friendRepo.AssertExpectations(t)
}

func TestAcceptCircleInviteFullCircleLeavesRequestPending(t *testing.T) {
	f := newFriendFixture("user-2")
	circleID := "circle-1"
	pending := models.FriendRequest{ID: "req-1", FromUserID: "user-1", ToUserID: "user-2", Status: models.RequestPending, Kind: models.RequestKindCircleInvite, CircleID: &circleID}
	f.friendRepo.On("GetRequest", mock.Anything, "req-1").Return(pending, nil)
	f.circleRepo.On("AddMember", mock.Anything, "circle-1", "user-2").Return(apperror.Conflict("this circle is full"))

	rec := perform(f.router, http.MethodPost, "/friends/requests/req-1/accept", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	f.friendRepo.AssertNotCalled(t, "ResolveRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectRequest(t *testing.T) {
	f := newFriendFixture("user-2")
	pending := models.FriendRequest{ID: "req-1", FromUserID: "user-1", ToUserID: "user-2", Status: models.RequestPending}
	rejected := pending
	rejected.Status = models.RequestRejected
	f.friendRepo.On("GetRequest", mock.Anything, "req-1").Return(pending, nil)
	f.friendRepo.On("ResolveRequest", mock.Anything, "req-1", models.RequestRejected).Return(rejected, nil)

	rec := perform(f.router, http.MethodPost, "/friends/requests/req-1/reject", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var req models.FriendRequest
	decodeBody(t, rec, &req)
	assert.Equal(t, models.RequestRejected, req.Status)
}

func TestListFriendsHydratesUsers(t *testing.T) {
	f := newFriendFixture("user-1")
	f.friendRepo.On("ListFriendIDs", mock.Anything, "user-1").Return([]string{"user-2", "user-3"}, nil)
	f.userRepo.On("GetUsersByIDs", mock.Anything, []string{"user-2", "user-3"}).Return([]models.User{
		{ID: "user-2", Username: "betty"},
		{ID: "user-3", Username: "carl"},
	}, nil)

	rec := perform(f.router, http.MethodGet, "/friends", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Friends []models.User `json:"friends"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Friends, 2)
	assert.Equal(t, "betty", body.Friends[0].Username)
}

func TestListPendingSplitsDirections(t *testing.T) {
	f := newFriendFixture("user-1")
	f.friendRepo.On("ListPending", mock.Anything, "user-1").Return([]models.FriendRequest{
		{ID: "req-in", FromUserID: "user-2", ToUserID: "user-1", Status: models.RequestPending},
		{ID: "req-out", FromUserID: "user-1", ToUserID: "user-3", Status: models.RequestPending},
	}, nil)

	rec := perform(f.router, http.MethodGet, "/friends/requests", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body models.PendingRequests
	decodeBody(t, rec, &body)
	assert.Len(t, body.Incoming, 1)
	assert.Len(t, body.Outgoing, 1)
	assert.Equal(t, "req-in", body.Incoming[0].ID)
	assert.Equal(t, "req-out", body.Outgoing[0].ID)
}

func TestRemoveFriendIdempotent(t *testing.T) {
	f := newFriendFixture("user-1")
	f.friendRepo.On("RemoveFriendship", mock.Anything, "user-1", "user-2").Return(nil)

	rec := perform(f.router, http.MethodDelete, "/friends/user-2", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	f.friendRepo.AssertExpectations(t)
}
