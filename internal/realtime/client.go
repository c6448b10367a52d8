package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"devlink/server/internal/apperr"
	"devlink/server/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client is one authenticated realtime session. Conn is read only by
// readPump and written only by writePump; everything else talks to the
// client through the Send channel.
type Client struct {
	UserID    string
	FirstName string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte

	gw *Gateway
}

func newClient(conn *websocket.Conn, user *models.User, gw *Gateway) *Client {
	return &Client{
		UserID:    user.ID,
		FirstName: user.FirstName,
		SessionID: uuid.NewString(),
		Conn:      conn,
		Send:      make(chan []byte, 256),
		gw:        gw,
	}
}

// send queues an event for this client. The channel is buffered; a full
// buffer drops the event rather than stalling the sender.
func (c *Client) send(event EventType, payload interface{}) {
	data, err := json.Marshal(WSMessage{
		Type:      event,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		c.gw.log.WithError(err).WithField("event", event).Error("Failed to marshal event")
		return
	}
	select {
	case c.Send <- data:
	default:
		c.gw.log.WithFields(logrus.Fields{
			"userId": c.UserID,
			"event":  event,
		}).Warn("Send buffer full, dropping event")
	}
}

func (c *Client) sendError(event EventType, err error) {
	c.send(event, ErrorPayload{Error: err.Error()})
}

// readPump reads incoming events until the connection dies. It runs on
// the upgrade goroutine so returning tears the session down.
func (c *Client) readPump() {
	defer c.Conn.Close()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.gw.log.WithError(err).WithField("userId", c.UserID).Warn("WebSocket read error")
			}
			return
		}

		var incoming IncomingMessage
		if err := json.Unmarshal(data, &incoming); err != nil {
			c.gw.log.WithError(err).WithField("userId", c.UserID).Warn("Invalid WebSocket frame")
			continue
		}
		c.dispatch(&incoming)
	}
}

// writePump drains the Send channel onto the socket and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) dispatch(msg *IncomingMessage) {
	ctx := context.Background()

	switch msg.Type {
	case EventMessageSend:
		c.handleSendMessage(ctx, msg.Payload)
	case EventTypingStart:
		c.handleTyping(ctx, msg.Payload, EventTypingStart, true)
	case EventTypingStop:
		c.handleTyping(ctx, msg.Payload, EventTypingStop, false)
	case EventConversationFetch:
		c.handleConversationFetch(ctx, msg.Payload)
	case EventMessagesRead:
		c.handleMarkRead(ctx, msg.Payload)
	case EventMessageDelete:
		c.handleDeleteMessage(ctx, msg.Payload)
	case EventConversationDelete:
		c.handleDeleteConversation(ctx, msg.Payload)
	case EventConnectionRemove:
		c.handleRemoveConnection(ctx, msg.Payload)
	case EventConnectionBlock:
		c.handleBlock(ctx, msg.Payload)
	case EventConnectionUnblock:
		c.handleUnblock(ctx, msg.Payload)
	default:
		c.gw.log.WithFields(logrus.Fields{
			"userId": c.UserID,
			"type":   msg.Type,
		}).Warn("Unknown event type")
	}
}

func (c *Client) handleSendMessage(ctx context.Context, raw json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.sendError(EventMessageError, apperr.New(apperr.KindValidation, "Invalid message data"))
		return
	}

	msg, err := c.gw.messages.Send(ctx, c.UserID, payload.ReceiverID, payload.Content)
	if err != nil {
		c.sendError(EventMessageError, err)
		return
	}

	// Persisted first, then delivered. An offline receiver picks the
	// message up on their next conversation fetch.
	c.gw.emitTo(payload.ReceiverID, EventMessageNew, msg)
	c.send(EventMessageSent, msg)
}

// handleTyping relays typing indicators. Starts are gated on the pair
// being allowed to message; stops always pass so a stale indicator can
// be cleared even after a block lands mid-typing.
func (c *Client) handleTyping(ctx context.Context, raw json.RawMessage, event EventType, gated bool) {
	var payload TypingPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ReceiverID == "" {
		return
	}

	if gated {
		allowed, err := c.gw.connections.CanExchangeMessages(ctx, c.UserID, payload.ReceiverID)
		if err != nil || !allowed {
			return
		}
	}

	relay := TypingRelayPayload{SenderID: c.UserID}
	if event == EventTypingStart {
		relay.SenderName = c.FirstName
	}
	c.gw.emitTo(payload.ReceiverID, event, relay)
}

func (c *Client) handleConversationFetch(ctx context.Context, raw json.RawMessage) {
	var payload ConversationFetchPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.OtherUserID == "" {
		c.sendError(EventConversationError, apperr.New(apperr.KindValidation, "Invalid conversation request"))
		return
	}

	messages, err := c.gw.messages.Conversation(ctx, c.UserID, payload.OtherUserID, payload.Limit, payload.Skip)
	if err != nil {
		c.sendError(EventConversationError, err)
		return
	}
	c.send(EventConversationData, ConversationDataPayload{
		Messages:    messages,
		OtherUserID: payload.OtherUserID,
	})
}

func (c *Client) handleMarkRead(ctx context.Context, raw json.RawMessage) {
	var payload MarkReadPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.SenderID == "" {
		return
	}

	updated, err := c.gw.messages.MarkRead(ctx, payload.SenderID, c.UserID)
	if err != nil {
		c.gw.log.WithError(err).WithField("userId", c.UserID).Error("Failed to mark messages as read")
		return
	}
	if updated > 0 {
		c.gw.emitTo(payload.SenderID, EventMessagesRead, ReadReceiptPayload{ReceiverID: c.UserID})
	}
}

func (c *Client) handleDeleteMessage(ctx context.Context, raw json.RawMessage) {
	var payload MessageDeletePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.MessageID == "" {
		c.sendError(EventMessageDeleteError, apperr.New(apperr.KindValidation, "Invalid message id"))
		return
	}

	msg, err := c.gw.messages.DeleteMessage(ctx, c.UserID, payload.MessageID)
	if err != nil {
		c.sendError(EventMessageDeleteError, err)
		return
	}

	deleted := MessageDeletedPayload{MessageID: msg.ID, DeletedFor: c.UserID}
	c.send(EventMessageDeleted, deleted)
	c.gw.emitTo(msg.OtherParty(c.UserID), EventMessageDeleted, deleted)
}

func (c *Client) handleDeleteConversation(ctx context.Context, raw json.RawMessage) {
	var payload ConversationActionPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.OtherUserID == "" {
		c.sendError(EventConversationDeleteError, apperr.New(apperr.KindValidation, "Invalid conversation request"))
		return
	}

	count, err := c.gw.messages.DeleteConversation(ctx, c.UserID, payload.OtherUserID)
	if err != nil {
		c.sendError(EventConversationDeleteError, err)
		return
	}

	c.send(EventConversationDeleted, ConversationDeletedPayload{
		OtherUserID:  payload.OtherUserID,
		DeletedCount: count,
	})
	c.gw.emitTo(payload.OtherUserID, EventConversationDeleted, ConversationDeletedPayload{
		DeletedBy:    c.UserID,
		DeletedCount: count,
	})
}

func (c *Client) handleRemoveConnection(ctx context.Context, raw json.RawMessage) {
	var payload ConversationActionPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.OtherUserID == "" {
		c.sendError(EventConnectionRemoveError, apperr.New(apperr.KindValidation, "Invalid user id"))
		return
	}

	if err := c.gw.connections.Remove(ctx, c.UserID, payload.OtherUserID); err != nil {
		c.sendError(EventConnectionRemoveError, err)
		return
	}

	c.send(EventConnectionRemoved, ConnectionRemovedPayload{OtherUserID: payload.OtherUserID})
	c.gw.emitTo(payload.OtherUserID, EventConnectionRemoved, ConnectionRemovedPayload{
		OtherUserID: c.UserID,
		RemovedBy:   c.UserID,
	})
}

func (c *Client) handleBlock(ctx context.Context, raw json.RawMessage) {
	var payload ConversationActionPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.OtherUserID == "" {
		c.sendError(EventConnectionBlockError, apperr.New(apperr.KindValidation, "Invalid user id"))
		return
	}

	if _, err := c.gw.connections.Block(ctx, c.UserID, payload.OtherUserID); err != nil {
		c.sendError(EventConnectionBlockError, err)
		return
	}

	c.send(EventConnectionBlocked, ConnectionBlockedPayload{
		OtherUserID: payload.OtherUserID,
		BlockedBy:   c.UserID,
	})
	c.gw.emitTo(payload.OtherUserID, EventConnectionBlocked, ConnectionBlockedPayload{
		OtherUserID: c.UserID,
		BlockedBy:   c.UserID,
	})
}

func (c *Client) handleUnblock(ctx context.Context, raw json.RawMessage) {
	var payload ConversationActionPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.OtherUserID == "" {
		c.sendError(EventConnectionUnblockError, apperr.New(apperr.KindValidation, "Invalid user id"))
		return
	}

	restored, err := c.gw.connections.Unblock(ctx, c.UserID, payload.OtherUserID)
	if err != nil {
		c.sendError(EventConnectionUnblockError, err)
		return
	}

	c.send(EventConnectionUnblocked, ConnectionUnblockedPayload{
		OtherUserID: payload.OtherUserID,
		Restored:    restored,
	})
	c.gw.emitTo(payload.OtherUserID, EventConnectionUnblocked, ConnectionUnblockedPayload{
		OtherUserID: c.UserID,
		ByUserID:    c.UserID,
		Restored:    restored,
	})
}
