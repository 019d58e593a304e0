package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOrderPostsTopBreaksTiesByNewest(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	posts := []ForumPost{
		{ID: "older-five", UpvoteCount: 5, CreatedAt: base.Add(1 * time.Hour)},
		{ID: "newer-five", UpvoteCount: 5, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "three", UpvoteCount: 3, CreatedAt: base.Add(3 * time.Hour)},
	}

	ordered := OrderPosts(posts, PostSortTop)

	require.Equal(t, "newer-five", ordered[0].ID)
	require.Equal(t, "older-five", ordered[1].ID)
	require.Equal(t, "three", ordered[2].ID)
}

func TestOrderPostsNewIgnoresVotes(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	posts := []ForumPost{
		{ID: "popular", UpvoteCount: 100, CreatedAt: base},
		{ID: "fresh", UpvoteCount: 0, CreatedAt: base.Add(time.Minute)},
	}

	ordered := OrderPosts(posts, PostSortNew)
	require.Equal(t, "fresh", ordered[0].ID)
}

func TestParsePostSortDefaultsToNew(t *testing.T) {
	require.Equal(t, PostSortTop, ParsePostSort("top"))
	require.Equal(t, PostSortNew, ParsePostSort("new"))
	require.Equal(t, PostSortNew, ParsePostSort(""))
	require.Equal(t, PostSortNew, ParsePostSort("weird"))
}
