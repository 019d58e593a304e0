package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankCirclesPrefersTendencyThenStreakThenFill(t *testing.T) {
	circles := []Circle{
		{ID: "low-streak", Goal: "sleep", Tendency: "owl", Streak: 2, MemberCount: 1, MaxMembers: 5},
		{ID: "no-match", Goal: "sleep", Tendency: "lark", Streak: 9, MemberCount: 4, MaxMembers: 5},
		{ID: "fuller", Goal: "sleep", Tendency: "owl", Streak: 5, MemberCount: 4, MaxMembers: 5},
		{ID: "emptier", Goal: "sleep", Tendency: "owl", Streak: 5, MemberCount: 2, MaxMembers: 5},
	}

	ranked := RankCircles(circles, "owl")

	ids := make([]string, 0, len(ranked))
	for _, c := range ranked {
		ids = append(ids, c.ID)
	}
	require.Equal(t, []string{"fuller", "emptier", "low-streak", "no-match"}, ids)
}

func TestRankCirclesWithoutTendencyUsesStreak(t *testing.T) {
	circles := []Circle{
		{ID: "a", Streak: 1, MemberCount: 3},
		{ID: "b", Streak: 7, MemberCount: 1},
	}

	ranked := RankCircles(circles, "")
	require.Equal(t, "b", ranked[0].ID)
	// input slice is left untouched
	require.Equal(t, "a", circles[0].ID)
}

func TestCircleFull(t *testing.T) {
	require.True(t, Circle{MemberCount: 3, MaxMembers: 3}.Full())
	require.False(t, Circle{MemberCount: 2, MaxMembers: 3}.Full())
}
