package realtime

import "sync"

// Registry is the process-wide presence map from user id to their active
// realtime session. It is owned by the Gateway that created it, never a
// package global. At most one session per user: a reconnect replaces the
// previous mapping without notifying the replaced session. Nothing holds
// the lock across I/O.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Client
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Client)}
}

// Add binds the client as its user's active session. Last connection wins.
func (r *Registry) Add(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[client.UserID] = client
}

// Remove unbinds the client, but only if it is still the active session
// for its user. A stale connection closing after a reconnect must not
// evict its replacement.
func (r *Registry) Remove(client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.sessions[client.UserID]
	if !ok || current.SessionID != client.SessionID {
		return false
	}
	delete(r.sessions, client.UserID)
	return true
}

// Get returns the active session for a user, if any.
func (r *Registry) Get(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.sessions[userID]
	return client, ok
}

// IsOnline reports whether the user currently has a live session.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[userID]
	return ok
}

// Clients returns a snapshot of all active sessions.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]*Client, 0, len(r.sessions))
	for _, client := range r.sessions {
		clients = append(clients, client)
	}
	return clients
}

// OnlineUserIDs returns the ids of all currently connected users.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userIDs := make([]string, 0, len(r.sessions))
	for userID := range r.sessions {
		userIDs = append(userIDs, userID)
	}
	return userIDs
}

// Count returns the number of currently connected users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
