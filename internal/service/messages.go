package service

import (
	"context"
	"strings"
	"time"

	"devlink/server/internal/apperr"
	"devlink/server/internal/models"
	"devlink/server/internal/store"
)

// DefaultConversationLimit is the page size used when the client does not
// ask for one.
const DefaultConversationLimit = 50

// MessageService wraps the message log with the visibility and permission
// rules of the delivery protocol.
type MessageService struct {
	messages    store.MessageStore
	connections *ConnectionService
	users       store.UserStore
}

// NewMessageService creates a MessageService.
func NewMessageService(messages store.MessageStore, connections *ConnectionService, users store.UserStore) *MessageService {
	return &MessageService{messages: messages, connections: connections, users: users}
}

// Send validates and persists a message. The message is only persisted if
// the pair is currently allowed to exchange messages; a storage failure
// surfaces as-is and is never retried, keeping sends at-most-once.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if receiverID == "" || content == "" {
		return nil, apperr.New(apperr.KindValidation, "Invalid message data")
	}
	if len(content) > models.MaxMessageLength {
		return nil, apperr.Newf(apperr.KindValidation, "Message content exceeds %d characters", models.MaxMessageLength)
	}

	allowed, err := s.connections.CanExchangeMessages(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.New(apperr.KindPermission, "You can only message connected users")
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Conversation returns the viewer-visible messages with another user in
// chronological order. The store fetches newest-first for pagination and
// the page is reversed for display.
func (s *MessageService) Conversation(ctx context.Context, viewerID, otherUserID string, limit, skip int) ([]models.Message, error) {
	allowed, err := s.connections.CanExchangeMessages(ctx, viewerID, otherUserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.New(apperr.KindPermission, "You can only view conversations with connected users")
	}

	if limit <= 0 {
		limit = DefaultConversationLimit
	}
	if skip < 0 {
		skip = 0
	}

	messages, err := s.messages.ListBetween(ctx, viewerID, otherUserID, limit, skip)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// MarkRead flags every unread message from senderID to receiverID as read.
// Already-read messages are untouched, so calling it again is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, senderID, receiverID string) (int64, error) {
	return s.messages.MarkRead(ctx, senderID, receiverID, time.Now())
}

// UnreadCount counts unread messages addressed to viewerID that the
// viewer has not soft-deleted.
func (s *MessageService) UnreadCount(ctx context.Context, viewerID string) (int, error) {
	return s.messages.UnreadCount(ctx, viewerID)
}

// DeleteMessage hides one message from the viewer. Messages the viewer
// cannot see report as not found rather than revealing they exist.
func (s *MessageService) DeleteMessage(ctx context.Context, viewerID, messageID string) (*models.Message, error) {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil || !msg.VisibleTo(viewerID) {
		if msg != nil && (msg.SenderID == viewerID || msg.ReceiverID == viewerID) {
			// Already hidden for this viewer; deleting twice is harmless.
			return msg, nil
		}
		return nil, apperr.New(apperr.KindNotFound, "Message not found")
	}

	if err := s.messages.SoftDeleteMessage(ctx, viewerID, messageID); err != nil {
		return nil, err
	}
	msg.DeletedFor = append(msg.DeletedFor, viewerID)
	return msg, nil
}

// DeleteConversation hides the whole conversation with otherUserID from
// the viewer only.
func (s *MessageService) DeleteConversation(ctx context.Context, viewerID, otherUserID string) (int64, error) {
	allowed, err := s.connections.CanExchangeMessages(ctx, viewerID, otherUserID)
	if err != nil {
		return 0, err
	}
	if !allowed {
		return 0, apperr.New(apperr.KindPermission, "You can only delete conversations with connected users")
	}
	return s.messages.SoftDeleteConversation(ctx, viewerID, otherUserID)
}

// Conversations returns one summary per correspondent: the latest visible
// message and the unread count, most recent conversation first.
func (s *MessageService) Conversations(ctx context.Context, viewerID string) ([]models.ConversationSummary, error) {
	rows, err := s.messages.Summaries(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		otherIDs = append(otherIDs, row.OtherUserID)
	}
	users, err := s.users.FindByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		user, ok := users[row.OtherUserID]
		if !ok {
			continue
		}
		summaries = append(summaries, models.ConversationSummary{
			User: user.ToCard(),
			LastMessage: models.LastMsg{
				Content:   row.LastMessage.Content,
				SenderID:  row.LastMessage.SenderID,
				CreatedAt: row.LastMessage.CreatedAt,
			},
			UnreadCount: row.UnreadCount,
		})
	}
	return summaries, nil
}
