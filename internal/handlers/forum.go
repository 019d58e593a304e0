package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"social-service/internal/middleware"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

const countsCacheTTL = 24 * time.Hour

// ForumHandler owns forum posts and their engagement: upvotes, likes and
// comments. Toggle state and counters live in Postgres; counters are mirrored
// into a redis hash best-effort so feed services can read them without
// touching the primary store. A nil redis client disables the mirror.
type ForumHandler struct {
	forumRepo repositories.ForumRepository
	cache     *redis.Client
}

func NewForumHandler(forumRepo repositories.ForumRepository, cache *redis.Client) *ForumHandler {
	return &ForumHandler{forumRepo: forumRepo, cache: cache}
}

type createPostInput struct {
	Content string `json:"content" binding:"required"`
}

// CreatePost handles POST /api/forums/:forum_id/posts.
func (h *ForumHandler) CreatePost(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	forumID := c.Param("forum_id")

	var input createPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	post, err := h.forumRepo.CreatePost(c.Request.Context(), forumID, uid, input.Content)
	if err != nil {
		respondError(c, err, "failed to create post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// ListPosts handles GET /api/forums/:forum_id/posts?sort=top|new. Unknown
// sort values fall back to new.
func (h *ForumHandler) ListPosts(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	forumID := c.Param("forum_id")

	posts, err := h.forumRepo.ListPosts(c.Request.Context(), forumID, uid)
	if err != nil {
		respondError(c, err, "failed to list posts")
		return
	}
	ordered := models.OrderPosts(posts, models.ParsePostSort(c.Query("sort")))
	if ordered == nil {
		ordered = []models.ForumPost{}
	}
	c.JSON(http.StatusOK, gin.H{"posts": ordered})
}

// ToggleUpvote handles POST /api/posts/:post_id/upvote. A second toggle by
// the same user undoes the first.
func (h *ForumHandler) ToggleUpvote(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	postID := c.Param("post_id")

	upvoted, count, err := h.forumRepo.ToggleUpvote(c.Request.Context(), postID, uid)
	if err != nil {
		respondError(c, err, "failed to toggle upvote")
		return
	}
	h.mirrorCount(c.Request.Context(), postID, "upvotes", count)
	c.JSON(http.StatusOK, gin.H{"upvoted": upvoted, "upvote_count": count})
}

// ToggleLike handles POST /api/posts/:post_id/like.
func (h *ForumHandler) ToggleLike(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	postID := c.Param("post_id")

	liked, count, err := h.forumRepo.ToggleLike(c.Request.Context(), postID, uid)
	if err != nil {
		respondError(c, err, "failed to toggle like")
		return
	}
	h.mirrorCount(c.Request.Context(), postID, "likes", count)
	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": count})
}

type addCommentInput struct {
	Content string `json:"content" binding:"required"`
}

// AddComment handles POST /api/posts/:post_id/comments.
func (h *ForumHandler) AddComment(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	postID := c.Param("post_id")

	var input addCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	comment, err := h.forumRepo.AddComment(c.Request.Context(), postID, uid, input.Content)
	if err != nil {
		respondError(c, err, "failed to add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments handles GET /api/posts/:post_id/comments.
func (h *ForumHandler) ListComments(c *gin.Context) {
	postID := c.Param("post_id")

	comments, err := h.forumRepo.ListComments(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err, "failed to list comments")
		return
	}
	if comments == nil {
		comments = []models.ForumComment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// DeletePost handles DELETE /api/posts/:post_id. The author check is enforced
// on the delete statement in the store.
func (h *ForumHandler) DeletePost(c *gin.Context) {
	uid := middleware.UserIDFromContext(c)
	postID := c.Param("post_id")

	if err := h.forumRepo.DeletePost(c.Request.Context(), postID, uid); err != nil {
		respondError(c, err, "failed to delete post")
		return
	}
	h.dropCounts(c.Request.Context(), postID)
	c.Status(http.StatusNoContent)
}

func countsKey(postID string) string {
	return "social:post:" + postID + ":counts"
}

// mirrorCount pushes a fresh counter into the redis hash. Failures are logged
// and never surface; Postgres remains the source of truth.
func (h *ForumHandler) mirrorCount(ctx context.Context, postID, field string, value int) {
	if h.cache == nil {
		return
	}
	key := countsKey(postID)
	pipe := h.cache.Pipeline()
	pipe.HSet(ctx, key, field, value)
	pipe.Expire(ctx, key, countsCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("cache: mirror %s %s failed: %v", key, field, err)
	}
}

func (h *ForumHandler) dropCounts(ctx context.Context, postID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Del(ctx, countsKey(postID)).Err(); err != nil {
		log.Printf("cache: drop %s failed: %v", countsKey(postID), err)
	}
}
