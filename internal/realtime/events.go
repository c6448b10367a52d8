package realtime

import (
	"encoding/json"
	"time"

	"devlink/server/internal/models"
)

// EventType represents different WebSocket event types
type EventType string

const (
	// Message events
	EventMessageSend  EventType = "message:send"
	EventMessageSent  EventType = "message:sent"
	EventMessageNew   EventType = "message:new"
	EventMessageError EventType = "message:error"

	// Typing events
	EventTypingStart EventType = "typing:start"
	EventTypingStop  EventType = "typing:stop"

	// Conversation events
	EventConversationFetch EventType = "conversation:fetch"
	EventConversationData  EventType = "conversation:data"
	EventConversationError EventType = "conversation:error"

	// Read receipts
	EventMessagesRead EventType = "messages:read"

	// Deletion events
	EventMessageDelete           EventType = "message:delete"
	EventMessageDeleted          EventType = "message:deleted"
	EventMessageDeleteError      EventType = "message:delete:error"
	EventConversationDelete      EventType = "conversation:delete"
	EventConversationDeleted     EventType = "conversation:deleted"
	EventConversationDeleteError EventType = "conversation:delete:error"

	// Connection lifecycle events
	EventConnectionRemove       EventType = "connection:remove"
	EventConnectionRemoved      EventType = "connection:removed"
	EventConnectionRemoveError  EventType = "connection:remove:error"
	EventConnectionBlock        EventType = "connection:block"
	EventConnectionBlocked      EventType = "connection:blocked"
	EventConnectionBlockError   EventType = "connection:block:error"
	EventConnectionUnblock      EventType = "connection:unblock"
	EventConnectionUnblocked    EventType = "connection:unblocked"
	EventConnectionUnblockError EventType = "connection:unblock:error"

	// Presence events
	EventUserOnline  EventType = "user:online"
	EventUserOffline EventType = "user:offline"
)

// WSMessage is the envelope for every server-to-client event
type WSMessage struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// IncomingMessage represents events received from clients
type IncomingMessage struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SendMessagePayload is the message:send request payload
type SendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// TypingPayload is the client-side typing indicator payload
type TypingPayload struct {
	ReceiverID string `json:"receiverId"`
}

// TypingRelayPayload is the typing indicator relayed to the peer
type TypingRelayPayload struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName,omitempty"`
}

// ConversationFetchPayload is the conversation:fetch request payload
type ConversationFetchPayload struct {
	OtherUserID string `json:"otherUserId"`
	Limit       int    `json:"limit"`
	Skip        int    `json:"skip"`
}

// ConversationDataPayload carries a fetched conversation page
type ConversationDataPayload struct {
	Messages    []models.Message `json:"messages"`
	OtherUserID string           `json:"otherUserId"`
}

// MarkReadPayload is the messages:read request payload
type MarkReadPayload struct {
	SenderID string `json:"senderId"`
}

// ReadReceiptPayload notifies the original sender their messages were read
type ReadReceiptPayload struct {
	ReceiverID string `json:"receiverId"`
}

// MessageDeletePayload is the message:delete request payload
type MessageDeletePayload struct {
	MessageID string `json:"messageId"`
}

// MessageDeletedPayload mirrors a soft delete to both parties
type MessageDeletedPayload struct {
	MessageID  string `json:"messageId"`
	DeletedFor string `json:"deletedFor"`
}

// ConversationActionPayload targets a whole conversation by counterpart
type ConversationActionPayload struct {
	OtherUserID string `json:"otherUserId"`
}

// ConversationDeletedPayload reports a conversation soft delete
type ConversationDeletedPayload struct {
	OtherUserID  string `json:"otherUserId,omitempty"`
	DeletedBy    string `json:"deletedBy,omitempty"`
	DeletedCount int64  `json:"deletedCount"`
}

// ConnectionRemovedPayload reports an unfriend to both parties
type ConnectionRemovedPayload struct {
	OtherUserID string `json:"otherUserId"`
	RemovedBy   string `json:"removedBy,omitempty"`
}

// ConnectionBlockedPayload reports a block
type ConnectionBlockedPayload struct {
	OtherUserID string `json:"otherUserId"`
	BlockedBy   string `json:"blockedBy"`
}

// ConnectionUnblockedPayload reports an unblock and whether the
// connection was restored
type ConnectionUnblockedPayload struct {
	OtherUserID string `json:"otherUserId"`
	ByUserID    string `json:"byUserId,omitempty"`
	Restored    bool   `json:"restored"`
}

// PresencePayload announces a user going online or offline
type PresencePayload struct {
	UserID string `json:"userId"`
}

// ErrorPayload carries a typed failure back to the initiating client
type ErrorPayload struct {
	Error string `json:"error"`
}
