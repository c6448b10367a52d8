// Package realtime implements the WebSocket gateway: session auth,
// presence tracking, and the event protocol between connected clients.
package realtime

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"

	"devlink/server/internal/models"
	"devlink/server/internal/service"
)

// Gateway owns the presence registry and routes events between sessions.
// One instance serves the whole process; handlers reach it through
// dependency injection rather than a package global.
type Gateway struct {
	registry    *Registry
	connections *service.ConnectionService
	messages    *service.MessageService
	log         *logrus.Logger
}

// NewGateway creates a Gateway around an existing registry.
func NewGateway(registry *Registry, connections *service.ConnectionService, messages *service.MessageService, log *logrus.Logger) *Gateway {
	return &Gateway{
		registry:    registry,
		connections: connections,
		messages:    messages,
		log:         log,
	}
}

// Registry exposes the presence registry for read-only queries.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// HandleConnection runs one session from registration to teardown. It
// blocks until the connection closes; fiber's websocket handler calls it
// on the upgraded connection's goroutine.
func (g *Gateway) HandleConnection(conn *websocket.Conn, user *models.User) {
	client := newClient(conn, user, g)
	g.registry.Add(client)

	g.log.WithFields(logrus.Fields{
		"userId":    client.UserID,
		"sessionId": client.SessionID,
		"online":    g.registry.Count(),
	}).Info("WebSocket client connected")

	g.broadcast(EventUserOnline, PresencePayload{UserID: client.UserID}, client.UserID)

	go client.writePump()
	client.readPump()

	// A reconnect replaces the registry entry before the old readPump
	// returns; only announce offline if this session was still current.
	// Send is never closed: a concurrent emitTo or broadcast may hold a
	// reference to this client past removal, and writing to a closed
	// channel would panic. writePump exits on its own once the connection
	// is gone and the orphaned buffer is garbage collected with the client.
	if g.registry.Remove(client) {
		g.broadcast(EventUserOffline, PresencePayload{UserID: client.UserID}, client.UserID)
	}

	g.log.WithFields(logrus.Fields{
		"userId":    client.UserID,
		"sessionId": client.SessionID,
		"online":    g.registry.Count(),
	}).Info("WebSocket client disconnected")
}

// emitTo queues an event for one user and reports whether they were
// online to receive it.
func (g *Gateway) emitTo(userID string, event EventType, payload interface{}) bool {
	client, ok := g.registry.Get(userID)
	if !ok {
		return false
	}
	client.send(event, payload)
	return true
}

// broadcast queues an event for every connected user except one.
func (g *Gateway) broadcast(event EventType, payload interface{}, exceptUserID string) {
	for _, client := range g.registry.Clients() {
		if client.UserID == exceptUserID {
			continue
		}
		client.send(event, payload)
	}
}
