package models

import (
	"sort"
	"time"
)

// PostSort selects the ordering of a forum listing.
type PostSort string

const (
	PostSortTop PostSort = "top"
	PostSortNew PostSort = "new"
)

// ParsePostSort maps a query value to a PostSort, defaulting to New.
func ParsePostSort(s string) PostSort {
	if s == string(PostSortTop) {
		return PostSortTop
	}
	return PostSortNew
}

// ForumPost carries denormalized engagement counters. The authoritative
// vote/like membership lives in per-user toggle sets at the store.
type ForumPost struct {
	ID           string    `db:"id" json:"id"`
	ForumID      string    `db:"forum_id" json:"forum_id"`
	AuthorID     string    `db:"author_id" json:"author_id"`
	Content      string    `db:"content" json:"content"`
	UpvoteCount  int       `db:"upvote_count" json:"upvote_count"`
	LikeCount    int       `db:"like_count" json:"like_count"`
	CommentCount int       `db:"comment_count" json:"comment_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	Upvoted      bool      `db:"upvoted" json:"upvoted"`
	Liked        bool      `db:"liked" json:"liked"`
}

// OrderPosts ranks posts for the requested sort. Top orders by upvotes
// descending with newer posts breaking ties; New orders by creation time
// descending.
func OrderPosts(posts []ForumPost, by PostSort) []ForumPost {
	ordered := make([]ForumPost, len(posts))
	copy(ordered, posts)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if by == PostSortTop && a.UpvoteCount != b.UpvoteCount {
			return a.UpvoteCount > b.UpvoteCount
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return ordered
}

// ForumComment is a flat comment on a post.
type ForumComment struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
