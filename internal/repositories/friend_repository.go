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

const friendRequestColumns = `id, from_user_id, to_user_id, status, kind, circle_id, message, created_at, updated_at`

// FriendRepository persists friend requests. Friendship is derived state: a pair
// is friends iff an accepted request exists between them.
type FriendRepository interface {
	CreateRequest(ctx context.Context, from, to string, kind models.RequestKind, circleID *string, message string) (models.FriendRequest, error)
	GetRequest(ctx context.Context, id string) (models.FriendRequest, error)
	ResolveRequest(ctx context.Context, id string, to models.RequestStatus) (models.FriendRequest, error)
	ListFriendIDs(ctx context.Context, uid string) ([]string, error)
	ListPending(ctx context.Context, uid string) ([]models.FriendRequest, error)
	RemoveFriendship(ctx context.Context, a, b string) error
}

// FriendRepo is a sqlx implementation of FriendRepository.
type FriendRepo struct {
	db *sqlx.DB
}

// NewFriendRepo constructs a FriendRepo.
func NewFriendRepo(db *sqlx.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

// CreateRequest inserts a pending request. The existence check and the insert
// are one atomic operation: a partial unique index on the unordered pair rejects
// a second pending request regardless of direction or timing.
func (r *FriendRepo) CreateRequest(ctx context.Context, from, to string, kind models.RequestKind, circleID *string, message string) (models.FriendRequest, error) {
	if from == to {
		return models.FriendRequest{}, apperror.Conflict("cannot send a request to yourself")
	}

	var req models.FriendRequest
	err := r.db.QueryRowxContext(ctx, `INSERT INTO friend_requests (id, from_user_id, to_user_id, status, kind, circle_id, message)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+friendRequestColumns,
		uuid.NewString(), from, to, models.RequestPending, kind, circleID, message).StructScan(&req)
	if isUniqueViolation(err) {
		return models.FriendRequest{}, apperror.Conflict("request already sent")
	}
	return req, wrapStore(err)
}

// GetRequest fetches a request by id.
func (r *FriendRepo) GetRequest(ctx context.Context, id string) (models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.GetContext(ctx, &req, `SELECT `+friendRequestColumns+` FROM friend_requests WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FriendRequest{}, apperror.NotFound("friend request not found")
	}
	return req, wrapStore(err)
}

// ResolveRequest transitions a pending request to a terminal status. The update
// is conditional on status so a request resolves exactly once; a second attempt
// sees the terminal row and fails InvalidState.
func (r *FriendRepo) ResolveRequest(ctx context.Context, id string, to models.RequestStatus) (models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.QueryRowxContext(ctx, `UPDATE friend_requests SET status=$2, updated_at=NOW()
        WHERE id=$1 AND status=$3
        RETURNING `+friendRequestColumns,
		id, to, models.RequestPending).StructScan(&req)
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.FriendRequest{}, wrapStore(err)
	}

	if _, getErr := r.GetRequest(ctx, id); getErr != nil {
		return models.FriendRequest{}, getErr
	}
	return models.FriendRequest{}, apperror.InvalidState("request already resolved")
}

// ListFriendIDs returns the ids of everyone the user shares an accepted request
// with, in either direction.
func (r *FriendRepo) ListFriendIDs(ctx context.Context, uid string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT CASE WHEN from_user_id=$1 THEN to_user_id ELSE from_user_id END
        FROM friend_requests
        WHERE status=$2 AND (from_user_id=$1 OR to_user_id=$1)
        ORDER BY updated_at DESC`, uid, models.RequestAccepted)
	return ids, wrapStore(err)
}

// ListPending returns the user's pending requests, both directions.
func (r *FriendRepo) ListPending(ctx context.Context, uid string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.SelectContext(ctx, &requests, `SELECT `+friendRequestColumns+` FROM friend_requests
        WHERE status=$2 AND (from_user_id=$1 OR to_user_id=$1)
        ORDER BY created_at DESC`, uid, models.RequestPending)
	return requests, wrapStore(err)
}

// RemoveFriendship deletes the accepted request backing a friendship. A no-op
// when the pair is not friends.
func (r *FriendRepo) RemoveFriendship(ctx context.Context, a, b string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM friend_requests
        WHERE status=$3
        AND ((from_user_id=$1 AND to_user_id=$2) OR (from_user_id=$2 AND to_user_id=$1))`,
		a, b, models.RequestAccepted)
	return wrapStore(err)
}
