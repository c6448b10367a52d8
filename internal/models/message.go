package models

import "time"

// MaxMessageLength is the upper bound on message content length.
const MaxMessageLength = 1000

// Message represents a direct message between two users.
// Soft deletion is per-viewer: a user in DeletedFor no longer sees the
// message, the other party is unaffected.
type Message struct {
	ID         string     `json:"id" db:"id"`
	SenderID   string     `json:"senderId" db:"sender_id"`
	ReceiverID string     `json:"receiverId" db:"receiver_id"`
	Content    string     `json:"content" db:"content"`
	Read       bool       `json:"read" db:"read"`
	ReadAt     *time.Time `json:"readAt,omitempty" db:"read_at"`
	DeletedFor []string   `json:"deletedFor" db:"deleted_for"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}

// VisibleTo reports whether viewer may see this message.
func (m *Message) VisibleTo(viewer string) bool {
	if m.SenderID != viewer && m.ReceiverID != viewer {
		return false
	}
	for _, id := range m.DeletedFor {
		if id == viewer {
			return false
		}
	}
	return true
}

// OtherParty returns the participant that is not userID.
func (m *Message) OtherParty(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// ConversationSummary is one row of the conversations list: the other
// participant, the most recent visible message and the unread count.
type ConversationSummary struct {
	User        UserCard `json:"user"`
	LastMessage LastMsg  `json:"lastMessage"`
	UnreadCount int      `json:"unreadCount"`
}

// LastMsg is the preview of the newest message in a conversation
type LastMsg struct {
	Content   string    `json:"content"`
	SenderID  string    `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}
