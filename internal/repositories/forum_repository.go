package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"social-service/internal/apperror"
	"social-service/internal/models"
)

// ForumRepository persists posts, comments and the per-user toggle sets backing
// vote/like counts.
type ForumRepository interface {
	CreatePost(ctx context.Context, forumID, authorID, content string) (models.ForumPost, error)
	GetPost(ctx context.Context, postID string) (models.ForumPost, error)
	ListPosts(ctx context.Context, forumID, viewerID string) ([]models.ForumPost, error)
	ToggleUpvote(ctx context.Context, postID, uid string) (bool, int, error)
	ToggleLike(ctx context.Context, postID, uid string) (bool, int, error)
	AddComment(ctx context.Context, postID, authorID, content string) (models.ForumComment, error)
	ListComments(ctx context.Context, postID string) ([]models.ForumComment, error)
	DeletePost(ctx context.Context, postID, requesterID string) error
}

// ForumRepo is a sqlx implementation of ForumRepository.
type ForumRepo struct {
	db *sqlx.DB
}

// NewForumRepo constructs a ForumRepo.
func NewForumRepo(db *sqlx.DB) *ForumRepo {
	return &ForumRepo{db: db}
}

// CreatePost stores a new post with zeroed counters.
func (r *ForumRepo) CreatePost(ctx context.Context, forumID, authorID, content string) (models.ForumPost, error) {
	var post models.ForumPost
	err := r.db.QueryRowxContext(ctx, `INSERT INTO forum_posts (id, forum_id, author_id, content)
        VALUES ($1, $2, $3, $4)
        RETURNING id, forum_id, author_id, content, upvote_count, like_count, comment_count, created_at`,
		uuid.NewString(), forumID, authorID, content).StructScan(&post)
	return post, wrapStore(err)
}

// GetPost fetches a post by id.
func (r *ForumRepo) GetPost(ctx context.Context, postID string) (models.ForumPost, error) {
	var post models.ForumPost
	err := r.db.GetContext(ctx, &post, `SELECT id, forum_id, author_id, content, upvote_count, like_count, comment_count, created_at
        FROM forum_posts WHERE id=$1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ForumPost{}, apperror.NotFound("post not found")
	}
	return post, wrapStore(err)
}

// ListPosts returns a forum's posts, newest first, annotated with the viewer's
// own toggle state. Ranking for the Top sort happens at the service layer.
func (r *ForumRepo) ListPosts(ctx context.Context, forumID, viewerID string) ([]models.ForumPost, error) {
	var posts []models.ForumPost
	err := r.db.SelectContext(ctx, &posts, `SELECT p.id, p.forum_id, p.author_id, p.content,
            p.upvote_count, p.like_count, p.comment_count, p.created_at,
            EXISTS(SELECT 1 FROM post_upvotes v WHERE v.post_id = p.id AND v.user_id = $2) AS upvoted,
            EXISTS(SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $2) AS liked
        FROM forum_posts p
        WHERE p.forum_id=$1
        ORDER BY p.created_at DESC`, forumID, viewerID)
	return posts, wrapStore(err)
}

// ToggleUpvote flips the user's membership in the post's upvote set. Returns
// whether the upvote is now active and the new count.
func (r *ForumRepo) ToggleUpvote(ctx context.Context, postID, uid string) (bool, int, error) {
	return r.toggle(ctx, "post_upvotes", "upvote_count", postID, uid)
}

// ToggleLike flips the user's membership in the post's like set.
func (r *ForumRepo) ToggleLike(ctx context.Context, postID, uid string) (bool, int, error) {
	return r.toggle(ctx, "post_likes", "like_count", postID, uid)
}

// toggle removes the (post, user) row if present, inserts it otherwise, and
// adjusts the denormalized counter in the same transaction. Applying the same
// toggle twice restores the original state.
func (r *ForumRepo) toggle(ctx context.Context, setTable, countColumn, postID, uid string) (bool, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, wrapStore(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE post_id=$1 AND user_id=$2`, setTable), postID, uid)
	if err != nil {
		return false, 0, wrapStore(err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, 0, wrapStore(err)
	}

	active := removed == 0
	delta := -1
	if active {
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (post_id, user_id) VALUES ($1, $2)`, setTable), postID, uid)
		if isForeignKeyViolation(err) {
			return false, 0, apperror.NotFound("post not found")
		}
		if err != nil {
			return false, 0, wrapStore(err)
		}
		delta = 1
	}

	var count int
	err = tx.QueryRowxContext(ctx, fmt.Sprintf(`UPDATE forum_posts SET %s = %s + $2 WHERE id=$1 RETURNING %s`,
		countColumn, countColumn, countColumn), postID, delta).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return false, 0, apperror.NotFound("post not found")
	}
	if err != nil {
		return false, 0, wrapStore(err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, wrapStore(err)
	}
	return active, count, nil
}

// AddComment stores the comment and bumps the parent's comment counter in one
// transaction.
func (r *ForumRepo) AddComment(ctx context.Context, postID, authorID, content string) (models.ForumComment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ForumComment{}, wrapStore(err)
	}
	defer tx.Rollback()

	var comment models.ForumComment
	err = tx.QueryRowxContext(ctx, `INSERT INTO forum_comments (id, post_id, author_id, content)
        VALUES ($1, $2, $3, $4)
        RETURNING id, post_id, author_id, content, created_at`,
		uuid.NewString(), postID, authorID, content).StructScan(&comment)
	if isForeignKeyViolation(err) {
		return models.ForumComment{}, apperror.NotFound("post not found")
	}
	if err != nil {
		return models.ForumComment{}, wrapStore(err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE forum_posts SET comment_count = comment_count + 1 WHERE id=$1`, postID); err != nil {
		return models.ForumComment{}, wrapStore(err)
	}

	if err := tx.Commit(); err != nil {
		return models.ForumComment{}, wrapStore(err)
	}
	return comment, nil
}

// ListComments returns a post's comments oldest first.
func (r *ForumRepo) ListComments(ctx context.Context, postID string) ([]models.ForumComment, error) {
	var comments []models.ForumComment
	err := r.db.SelectContext(ctx, &comments, `SELECT id, post_id, author_id, content, created_at
        FROM forum_comments WHERE post_id=$1
        ORDER BY created_at ASC`, postID)
	return comments, wrapStore(err)
}

// DeletePost removes the post and, via cascade, its comments and toggle sets.
// The author check rides on the delete statement itself; zero rows means the
// post is either absent or owned by someone else, distinguished afterwards.
func (r *ForumRepo) DeletePost(ctx context.Context, postID, requesterID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM forum_posts WHERE id=$1 AND author_id=$2`, postID, requesterID)
	if err != nil {
		return wrapStore(err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return wrapStore(err)
	}
	if count == 0 {
		if _, err := r.GetPost(ctx, postID); err != nil {
			return err
		}
		return apperror.PermissionDenied("only the author can delete a post")
	}
	return nil
}
