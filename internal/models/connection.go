package models

import "time"

// ConnectionStatus is the lifecycle status of a connection request
type ConnectionStatus string

const (
	StatusIgnore     ConnectionStatus = "ignore"
	StatusInterested ConnectionStatus = "interested"
	StatusRejected   ConnectionStatus = "rejected"
	StatusAccepted   ConnectionStatus = "accepted"
	StatusBlocked    ConnectionStatus = "blocked"
)

// ValidSwipeStatus reports whether s is a status a user may set with a swipe.
// Accepted and rejected are only reachable through review, blocked through block.
func ValidSwipeStatus(s ConnectionStatus) bool {
	return s == StatusIgnore || s == StatusInterested
}

// ValidReviewStatus reports whether s is a status a reviewer may set.
func ValidReviewStatus(s ConnectionStatus) bool {
	return s == StatusAccepted || s == StatusRejected
}

// ConnectionRequest relates two users with a lifecycle status.
// At most one active record exists per pair, in either direction.
type ConnectionRequest struct {
	ID         string           `json:"id" db:"id"`
	FromUserID string           `json:"fromUserId" db:"from_user_id"`
	ToUserID   string           `json:"toUserId" db:"to_user_id"`
	Status     ConnectionStatus `json:"status" db:"status"`
	BlockedBy  *string          `json:"blockedBy,omitempty" db:"blocked_by"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time        `json:"updatedAt" db:"updated_at"`
}

// OtherUser returns the participant that is not userID.
func (r *ConnectionRequest) OtherUser(userID string) string {
	if r.FromUserID == userID {
		return r.ToUserID
	}
	return r.FromUserID
}

// ConnectionRequestWithUser includes the counterpart's profile card
type ConnectionRequestWithUser struct {
	ID        string           `json:"id"`
	FromUser  UserCard         `json:"fromUser"`
	Status    ConnectionStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}

// ConnectionUser is a connections-list row: the other user plus the
// relationship status from the caller's point of view.
type ConnectionUser struct {
	User             UserCard         `json:"user"`
	ConnectionStatus ConnectionStatus `json:"connectionStatus"`
}
