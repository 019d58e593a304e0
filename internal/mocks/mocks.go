// Package mocks holds testify mock implementations of the repository
// interfaces for handler tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"social-service/internal/models"
	"social-service/internal/repositories"
)

var (
	_ repositories.UserRepository         = (*UserRepositoryMock)(nil)
	_ repositories.FriendRepository       = (*FriendRepositoryMock)(nil)
	_ repositories.CircleRepository       = (*CircleRepositoryMock)(nil)
	_ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
	_ repositories.ForumRepository        = (*ForumRepositoryMock)(nil)
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) UpsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, id string) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

type FriendRepositoryMock struct {
	mock.Mock
}

func (m *FriendRepositoryMock) CreateRequest(ctx context.Context, from, to string, kind models.RequestKind, circleID *string, message string) (models.FriendRequest, error) {
	args := m.Called(ctx, from, to, kind, circleID, message)
	return args.Get(0).(models.FriendRequest), args.Error(1)
}

func (m *FriendRepositoryMock) GetRequest(ctx context.Context, id string) (models.FriendRequest, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.FriendRequest), args.Error(1)
}

func (m *FriendRepositoryMock) ResolveRequest(ctx context.Context, id string, to models.RequestStatus) (models.FriendRequest, error) {
	args := m.Called(ctx, id, to)
	return args.Get(0).(models.FriendRequest), args.Error(1)
}

func (m *FriendRepositoryMock) ListFriendIDs(ctx context.Context, uid string) ([]string, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *FriendRepositoryMock) ListPending(ctx context.Context, uid string) ([]models.FriendRequest, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FriendRequest), args.Error(1)
}

func (m *FriendRepositoryMock) RemoveFriendship(ctx context.Context, a, b string) error {
	args := m.Called(ctx, a, b)
	return args.Error(0)
}

type CircleRepositoryMock struct {
	mock.Mock
}

func (m *CircleRepositoryMock) CreateCircle(ctx context.Context, name, goal, tendency string, maxMembers int, creator string) (models.Circle, error) {
	args := m.Called(ctx, name, goal, tendency, maxMembers, creator)
	return args.Get(0).(models.Circle), args.Error(1)
}

func (m *CircleRepositoryMock) GetCircle(ctx context.Context, id string) (models.Circle, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Circle), args.Error(1)
}

func (m *CircleRepositoryMock) ListCirclesForUser(ctx context.Context, uid string) ([]models.Circle, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Circle), args.Error(1)
}

func (m *CircleRepositoryMock) FindOpenCircles(ctx context.Context, goal, excludeUID string) ([]models.Circle, error) {
	args := m.Called(ctx, goal, excludeUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Circle), args.Error(1)
}

func (m *CircleRepositoryMock) AddMember(ctx context.Context, circleID, uid string) error {
	args := m.Called(ctx, circleID, uid)
	return args.Error(0)
}

func (m *CircleRepositoryMock) RemoveMember(ctx context.Context, circleID, uid string) error {
	args := m.Called(ctx, circleID, uid)
	return args.Error(0)
}

func (m *CircleRepositoryMock) IsMember(ctx context.Context, circleID, uid string) (bool, error) {
	args := m.Called(ctx, circleID, uid)
	return args.Bool(0), args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) GetOrCreateConversation(ctx context.Context, uidA, uidB string) (models.Conversation, error) {
	args := m.Called(ctx, uidA, uidB)
	return args.Get(0).(models.Conversation), args.Error(1)
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, id string) (models.Conversation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Conversation), args.Error(1)
}

func (m *ConversationRepositoryMock) ListConversations(ctx context.Context, uid string) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConversationSummary), args.Error(1)
}

func (m *ConversationRepositoryMock) AppendMessage(ctx context.Context, conv models.Conversation, senderID, content string) (models.Message, error) {
	args := m.Called(ctx, conv, senderID, content)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *ConversationRepositoryMock) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *ConversationRepositoryMock) MarkRead(ctx context.Context, conversationID, uid string) error {
	args := m.Called(ctx, conversationID, uid)
	return args.Error(0)
}

type ForumRepositoryMock struct {
	mock.Mock
}

func (m *ForumRepositoryMock) CreatePost(ctx context.Context, forumID, authorID, content string) (models.ForumPost, error) {
	args := m.Called(ctx, forumID, authorID, content)
	return args.Get(0).(models.ForumPost), args.Error(1)
}

func (m *ForumRepositoryMock) GetPost(ctx context.Context, postID string) (models.ForumPost, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(models.ForumPost), args.Error(1)
}

func (m *ForumRepositoryMock) ListPosts(ctx context.Context, forumID, viewerID string) ([]models.ForumPost, error) {
	args := m.Called(ctx, forumID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ForumPost), args.Error(1)
}

func (m *ForumRepositoryMock) ToggleUpvote(ctx context.Context, postID, uid string) (bool, int, error) {
	args := m.Called(ctx, postID, uid)
	return args.Bool(0), args.Int(1), args.Error(2)
}

func (m *ForumRepositoryMock) ToggleLike(ctx context.Context, postID, uid string) (bool, int, error) {
	args := m.Called(ctx, postID, uid)
	return args.Bool(0), args.Int(1), args.Error(2)
}

func (m *ForumRepositoryMock) AddComment(ctx context.Context, postID, authorID, content string) (models.ForumComment, error) {
	args := m.Called(ctx, postID, authorID, content)
	return args.Get(0).(models.ForumComment), args.Error(1)
}

func (m *ForumRepositoryMock) ListComments(ctx context.Context, postID string) ([]models.ForumComment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ForumComment), args.Error(1)
}

func (m *ForumRepositoryMock) DeletePost(ctx context.Context, postID, requesterID string) error {
	args := m.Called(ctx, postID, requesterID)
	return args.Error(0)
}
