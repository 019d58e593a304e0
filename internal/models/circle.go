package models

import (
	"sort"
	"time"
)

// Circle is a capacity-bounded group matched to users by shared goal and an
// optional behavioral tendency tag. The tendency taxonomy is external; this
// service treats it as an opaque matching signal.
type Circle struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Goal        string    `db:"goal" json:"goal"`
	Tendency    string    `db:"tendency" json:"tendency,omitempty"`
	MaxMembers  int       `db:"max_members" json:"max_members"`
	Streak      int       `db:"streak" json:"streak"`
	MemberCount int       `db:"member_count" json:"member_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Full reports whether the circle has reached capacity.
func (c Circle) Full() bool {
	return c.MemberCount >= c.MaxMembers
}

// RankCircles orders joinable circles for a seeker with the given tendency:
// tendency matches first, then longer streaks, then fuller circles so that
// near-complete circles fill up preferentially. The input is assumed to be
// pre-filtered to open circles sharing the seeker's goal.
func RankCircles(circles []Circle, tendency string) []Circle {
	ranked := make([]Circle, len(circles))
	copy(ranked, circles)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		aMatch := tendency != "" && a.Tendency == tendency
		bMatch := tendency != "" && b.Tendency == tendency
		if aMatch != bMatch {
			return aMatch
		}
		if a.Streak != b.Streak {
			return a.Streak > b.Streak
		}
		return a.MemberCount > b.MemberCount
	})
	return ranked
}

// CircleEvent is broadcast over circle websocket rooms.
type CircleEvent struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
}
