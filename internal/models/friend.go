package models

import "time"

// RequestStatus is the lifecycle state of a friend request. Pending is the only
// non-terminal state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// RequestKind distinguishes a plain friend request from a circle invitation that
// rides on the request machinery. The circle id travels as a typed field, never
// encoded into the free-text message.
type RequestKind string

const (
	RequestKindFriend       RequestKind = "friend"
	RequestKindCircleInvite RequestKind = "circle_invite"
)

// FriendRequest is the stored request between two users. A pair is "friends" iff
// an accepted request exists between them, in either direction.
type FriendRequest struct {
	ID         string        `db:"id" json:"id"`
	FromUserID string        `db:"from_user_id" json:"from_user_id"`
	ToUserID   string        `db:"to_user_id" json:"to_user_id"`
	Status     RequestStatus `db:"status" json:"status"`
	Kind       RequestKind   `db:"kind" json:"kind"`
	CircleID   *string       `db:"circle_id" json:"circle_id,omitempty"`
	Message    string        `db:"message" json:"message,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether the request has reached an immutable state.
func (r FriendRequest) Terminal() bool {
	return r.Status != RequestPending
}

// CanTransition reports whether the request may move to the given status.
// Pending may become accepted or rejected; terminal states admit no transition.
func (r FriendRequest) CanTransition(to RequestStatus) bool {
	if r.Terminal() {
		return false
	}
	return to == RequestAccepted || to == RequestRejected
}

// Other returns the participant that is not self.
func (r FriendRequest) Other(self string) string {
	if r.FromUserID == self {
		return r.ToUserID
	}
	return r.FromUserID
}

// PendingRequests splits a user's pending requests by direction.
type PendingRequests struct {
	Incoming []FriendRequest `json:"incoming"`
	Outgoing []FriendRequest `json:"outgoing"`
}

// SplitPending buckets requests into incoming and outgoing relative to self.
func SplitPending(requests []FriendRequest, self string) PendingRequests {
	split := PendingRequests{
		Incoming: []FriendRequest{},
		Outgoing: []FriendRequest{},
	}
	for _, r := range requests {
		if r.FromUserID == self {
			split.Outgoing = append(split.Outgoing, r)
		} else {
			split.Incoming = append(split.Incoming, r)
		}
	}
	return split
}
