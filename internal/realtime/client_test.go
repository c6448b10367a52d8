package realtime

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devlink/server/internal/models"
	"devlink/server/internal/service"
	"devlink/server/internal/store/memory"
)

type testEnv struct {
	mem         *memory.Store
	connections *service.ConnectionService
	messages    *service.MessageService
	gw          *Gateway
}

func newTestEnv(t *testing.T, userIDs ...string) *testEnv {
	t.Helper()
	mem := memory.New()
	for _, id := range userIDs {
		mem.AddUser(models.User{ID: id, FirstName: "User-" + id, EmailID: id + "@test.dev"})
	}
	connSvc := service.NewConnectionService(mem.Connections, mem.Messages, mem.Users)
	msgSvc := service.NewMessageService(mem.Messages, connSvc, mem.Users)

	log := logrus.New()
	log.SetOutput(io.Discard)

	return &testEnv{
		mem:         mem,
		connections: connSvc,
		messages:    msgSvc,
		gw:          NewGateway(NewRegistry(), connSvc, msgSvc, log),
	}
}

// join registers a session without a real socket; handlers only touch the
// Send channel.
func (e *testEnv) join(t *testing.T, userID string) *Client {
	t.Helper()
	user := models.User{ID: userID, FirstName: "User-" + userID}
	c := newClient(nil, &user, e.gw)
	e.gw.registry.Add(c)
	return c
}

func (e *testEnv) connectPair(t *testing.T, a, b string) {
	t.Helper()
	ctx := context.Background()
	_, _, err := e.connections.SendRequest(ctx, a, b, models.StatusInterested)
	require.NoError(t, err)
	_, matched, err := e.connections.SendRequest(ctx, b, a, models.StatusInterested)
	require.NoError(t, err)
	require.True(t, matched)
}

func dispatch(t *testing.T, c *Client, event EventType, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	c.dispatch(&IncomingMessage{Type: event, Payload: raw})
}

// recv pops the next queued event, failing if none is pending.
func recv(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	default:
		t.Fatal("no event queued")
		return WSMessage{}
	}
}

func recvPayload(t *testing.T, c *Client, want EventType, out interface{}) {
	t.Helper()
	msg := recv(t, c)
	require.Equal(t, want, msg.Type)
	raw, err := json.Marshal(msg.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected event queued: %s", data)
	default:
	}
}

func TestSendMessageEvents(t *testing.T) {
	t.Run("delivers to both parties when connected", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		env.connectPair(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		dispatch(t, alice, EventMessageSend, SendMessagePayload{ReceiverID: "bob", Content: "hello"})

		var delivered models.Message
		recvPayload(t, bob, EventMessageNew, &delivered)
		assert.Equal(t, "hello", delivered.Content)
		assert.Equal(t, "alice", delivered.SenderID)

		var echoed models.Message
		recvPayload(t, alice, EventMessageSent, &echoed)
		assert.Equal(t, delivered.ID, echoed.ID)
	})

	t.Run("persists even when the receiver is offline", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		env.connectPair(t, "alice", "bob")
		alice := env.join(t, "alice")

		dispatch(t, alice, EventMessageSend, SendMessagePayload{ReceiverID: "bob", Content: "hello"})

		var echoed models.Message
		recvPayload(t, alice, EventMessageSent, &echoed)

		stored, err := env.mem.Messages.FindByID(context.Background(), echoed.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
	})

	t.Run("unconnected pair gets an error, nothing is stored", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		dispatch(t, alice, EventMessageSend, SendMessagePayload{ReceiverID: "bob", Content: "hello"})

		var errPayload ErrorPayload
		recvPayload(t, alice, EventMessageError, &errPayload)
		assert.NotEmpty(t, errPayload.Error)
		assertNoEvent(t, bob)
	})
}

func TestTypingEvents(t *testing.T) {
	t.Run("typing start reaches a connected peer", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		env.connectPair(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		dispatch(t, alice, EventTypingStart, TypingPayload{ReceiverID: "bob"})

		var relay TypingRelayPayload
		recvPayload(t, bob, EventTypingStart, &relay)
		assert.Equal(t, "alice", relay.SenderID)
		assert.Equal(t, "User-alice", relay.SenderName)
	})

	t.Run("typing start is dropped for unconnected pairs", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		dispatch(t, alice, EventTypingStart, TypingPayload{ReceiverID: "bob"})
		assertNoEvent(t, bob)
		assertNoEvent(t, alice)
	})

	t.Run("typing stop always passes", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		dispatch(t, alice, EventTypingStop, TypingPayload{ReceiverID: "bob"})

		var relay TypingRelayPayload
		recvPayload(t, bob, EventTypingStop, &relay)
		assert.Equal(t, "alice", relay.SenderID)
		assert.Empty(t, relay.SenderName)
	})
}

func TestConversationFetchEvents(t *testing.T) {
	env := newTestEnv(t, "alice", "bob")
	env.connectPair(t, "alice", "bob")
	alice := env.join(t, "alice")

	ctx := context.Background()
	_, err := env.messages.Send(ctx, "alice", "bob", "one")
	require.NoError(t, err)
	_, err = env.messages.Send(ctx, "bob", "alice", "two")
	require.NoError(t, err)

	dispatch(t, alice, EventConversationFetch, ConversationFetchPayload{OtherUserID: "bob"})

	var data ConversationDataPayload
	recvPayload(t, alice, EventConversationData, &data)
	assert.Equal(t, "bob", data.OtherUserID)
	require.Len(t, data.Messages, 2)
	assert.Equal(t, "one", data.Messages[0].Content)
	assert.Equal(t, "two", data.Messages[1].Content)
}

func TestMarkReadEvents(t *testing.T) {
	t.Run("notifies the original sender", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		env.connectPair(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		dispatch(t, alice, EventMessageSend, SendMessagePayload{ReceiverID: "bob", Content: "hello"})
		recv(t, alice) // message:sent
		recv(t, bob)   // message:new

		dispatch(t, bob, EventMessagesRead, MarkReadPayload{SenderID: "alice"})

		var receipt ReadReceiptPayload
		recvPayload(t, alice, EventMessagesRead, &receipt)
		assert.Equal(t, "bob", receipt.ReceiverID)
	})

	t.Run("no receipt when nothing was unread", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		env.connectPair(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		dispatch(t, bob, EventMessagesRead, MarkReadPayload{SenderID: "alice"})
		assertNoEvent(t, alice)
	})
}

func TestDeleteEvents(t *testing.T) {
	t.Run("message delete mirrors to both parties", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		env.connectPair(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		msg, err := env.messages.Send(context.Background(), "alice", "bob", "hello")
		require.NoError(t, err)

		dispatch(t, alice, EventMessageDelete, MessageDeletePayload{MessageID: msg.ID})

		var mine MessageDeletedPayload
		recvPayload(t, alice, EventMessageDeleted, &mine)
		assert.Equal(t, msg.ID, mine.MessageID)
		assert.Equal(t, "alice", mine.DeletedFor)

		var theirs MessageDeletedPayload
		recvPayload(t, bob, EventMessageDeleted, &theirs)
		assert.Equal(t, mine, theirs)
	})

	t.Run("conversation delete reports who deleted to the peer", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		env.connectPair(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		_, err := env.messages.Send(context.Background(), "alice", "bob", "hello")
		require.NoError(t, err)

		dispatch(t, alice, EventConversationDelete, ConversationActionPayload{OtherUserID: "bob"})

		var mine ConversationDeletedPayload
		recvPayload(t, alice, EventConversationDeleted, &mine)
		assert.Equal(t, "bob", mine.OtherUserID)
		assert.EqualValues(t, 1, mine.DeletedCount)

		var theirs ConversationDeletedPayload
		recvPayload(t, bob, EventConversationDeleted, &theirs)
		assert.Equal(t, "alice", theirs.DeletedBy)
	})
}

func TestConnectionLifecycleEvents(t *testing.T) {
	t.Run("remove notifies both parties", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		env.connectPair(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		dispatch(t, alice, EventConnectionRemove, ConversationActionPayload{OtherUserID: "bob"})

		var mine ConnectionRemovedPayload
		recvPayload(t, alice, EventConnectionRemoved, &mine)
		assert.Equal(t, "bob", mine.OtherUserID)

		var theirs ConnectionRemovedPayload
		recvPayload(t, bob, EventConnectionRemoved, &theirs)
		assert.Equal(t, "alice", theirs.OtherUserID)
		assert.Equal(t, "alice", theirs.RemovedBy)
	})

	t.Run("block and unblock round trip", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		env.connectPair(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		// History means the unblock later restores the connection.
		_, err := env.messages.Send(context.Background(), "alice", "bob", "hello")
		require.NoError(t, err)

		dispatch(t, alice, EventConnectionBlock, ConversationActionPayload{OtherUserID: "bob"})

		var blocked ConnectionBlockedPayload
		recvPayload(t, alice, EventConnectionBlocked, &blocked)
		assert.Equal(t, "alice", blocked.BlockedBy)
		recvPayload(t, bob, EventConnectionBlocked, &blocked)
		assert.Equal(t, "alice", blocked.BlockedBy)

		dispatch(t, alice, EventConnectionUnblock, ConversationActionPayload{OtherUserID: "bob"})

		var unblocked ConnectionUnblockedPayload
		recvPayload(t, alice, EventConnectionUnblocked, &unblocked)
		assert.Equal(t, "bob", unblocked.OtherUserID)
		assert.True(t, unblocked.Restored)

		recvPayload(t, bob, EventConnectionUnblocked, &unblocked)
		assert.Equal(t, "alice", unblocked.ByUserID)
		assert.True(t, unblocked.Restored)
	})

	t.Run("only the blocker may unblock", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		env.connectPair(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		dispatch(t, alice, EventConnectionBlock, ConversationActionPayload{OtherUserID: "bob"})
		recv(t, alice)
		recv(t, bob)

		dispatch(t, bob, EventConnectionUnblock, ConversationActionPayload{OtherUserID: "alice"})

		var errPayload ErrorPayload
		recvPayload(t, bob, EventConnectionUnblockError, &errPayload)
		assert.NotEmpty(t, errPayload.Error)
		assertNoEvent(t, alice)
	})
}

func TestTeardownRace(t *testing.T) {
	t.Run("delivery racing a teardown does not panic", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		env.connectPair(t, "alice", "bob")
		alice := env.join(t, "alice")
		bob := env.join(t, "bob")

		// A broadcast snapshot taken just before bob's session is torn
		// down still references his client; writing to it must be safe.
		snapshot := env.gw.registry.Clients()
		require.True(t, env.gw.registry.Remove(bob))

		require.NotPanics(t, func() {
			for _, c := range snapshot {
				c.send(EventUserOffline, PresencePayload{UserID: "carol"})
			}
		})

		// A peer sending after the teardown must not panic either; the
		// message persists and only the sender is notified.
		require.NotPanics(t, func() {
			dispatch(t, alice, EventMessageSend, SendMessagePayload{ReceiverID: "bob", Content: "late"})
		})

		recv(t, alice) // the offline fan-out queued above
		var echoed models.Message
		recvPayload(t, alice, EventMessageSent, &echoed)
		assert.Equal(t, "late", echoed.Content)

		stored, err := env.mem.Messages.FindByID(context.Background(), echoed.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
	})
}
