// Package memory provides in-memory implementations of the store
// interfaces. They back the service and gateway tests so the core logic
// can run against multiple isolated instances without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"devlink/server/internal/models"
	"devlink/server/internal/store"

	"github.com/google/uuid"
)

type data struct {
	mu          sync.RWMutex
	users       map[string]models.User
	connections map[string]models.ConnectionRequest
	messages    []models.Message
	reports     []models.Report
	seq         int64
}

// Store bundles in-memory implementations sharing one data set.
type Store struct {
	Users       *Users
	Connections *Connections
	Messages    *Messages
	Reports     *Reports

	d *data
}

// New creates an empty in-memory store.
func New() *Store {
	d := &data{
		users:       make(map[string]models.User),
		connections: make(map[string]models.ConnectionRequest),
	}
	return &Store{
		Users:       &Users{d: d},
		Connections: &Connections{d: d},
		Messages:    &Messages{d: d},
		Reports:     &Reports{d: d},
		d:           d,
	}
}

// AddUser seeds a user with a fixed id, for tests.
func (s *Store) AddUser(user models.User) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.d.users[user.ID] = user
}

// Users implements store.UserStore.
type Users struct{ d *data }

var _ store.UserStore = (*Users)(nil)

func (s *Users) Create(ctx context.Context, user *models.User) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	user.ID = uuid.NewString()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.d.users[user.ID] = *user
	return nil
}

func (s *Users) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	if user, ok := s.d.users[id]; ok {
		return &user, nil
	}
	return nil, nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	for _, user := range s.d.users {
		if user.EmailID == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Users) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	found := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if user, ok := s.d.users[id]; ok {
			found[id] = user
		}
	}
	return found, nil
}

func (s *Users) ListCandidates(ctx context.Context, excludeIDs []string, gender string) ([]models.User, error) {
	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var users []models.User
	for _, user := range s.d.users {
		if excluded[user.ID] {
			continue
		}
		if gender != "" && (user.Gender == nil || *user.Gender != gender) {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Connections implements store.ConnectionStore.
type Connections struct{ d *data }

var _ store.ConnectionStore = (*Connections)(nil)

func pairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

func (s *Connections) Create(ctx context.Context, req *models.ConnectionRequest) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	req.ID = uuid.NewString()
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	s.d.connections[req.ID] = *req
	return nil
}

func (s *Connections) Update(ctx context.Context, req *models.ConnectionRequest) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	req.UpdatedAt = time.Now()
	s.d.connections[req.ID] = *req
	return nil
}

func (s *Connections) Delete(ctx context.Context, id string) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	delete(s.d.connections, id)
	return nil
}

func (s *Connections) FindByID(ctx context.Context, id string) (*models.ConnectionRequest, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	if req, ok := s.d.connections[id]; ok {
		return &req, nil
	}
	return nil, nil
}

func (s *Connections) FindBetween(ctx context.Context, userA, userB string) (*models.ConnectionRequest, error) {
	key := pairKey(userA, userB)
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var latest *models.ConnectionRequest
	for _, req := range s.d.connections {
		if pairKey(req.FromUserID, req.ToUserID) != key {
			continue
		}
		r := req
		if latest == nil || r.UpdatedAt.After(latest.UpdatedAt) {
			latest = &r
		}
	}
	return latest, nil
}

func (s *Connections) list(match func(models.ConnectionRequest) bool) []models.ConnectionRequest {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var requests []models.ConnectionRequest
	for _, req := range s.d.connections {
		if match(req) {
			requests = append(requests, req)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests
}

func (s *Connections) ListForUser(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	return s.list(func(r models.ConnectionRequest) bool {
		return r.FromUserID == userID || r.ToUserID == userID
	}), nil
}

func (s *Connections) ListByStatusFor(ctx context.Context, userID string, status models.ConnectionStatus) ([]models.ConnectionRequest, error) {
	return s.list(func(r models.ConnectionRequest) bool {
		return (r.FromUserID == userID || r.ToUserID == userID) && r.Status == status
	}), nil
}

func (s *Connections) ListBlockedBy(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	return s.list(func(r models.ConnectionRequest) bool {
		return (r.FromUserID == userID || r.ToUserID == userID) &&
			r.Status == models.StatusBlocked && r.BlockedBy != nil && *r.BlockedBy == userID
	}), nil
}

func (s *Connections) ListInterestedTo(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	return s.list(func(r models.ConnectionRequest) bool {
		return r.ToUserID == userID && r.Status == models.StatusInterested
	}), nil
}

// Messages implements store.MessageStore.
type Messages struct{ d *data }

var _ store.MessageStore = (*Messages)(nil)

func sameConversation(m models.Message, a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

func deletedFor(m models.Message, viewer string) bool {
	for _, id := range m.DeletedFor {
		if id == viewer {
			return true
		}
	}
	return false
}

func (s *Messages) Insert(ctx context.Context, msg *models.Message) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	msg.ID = uuid.NewString()
	s.d.seq++
	// Keep insertion order strictly monotonic even when timestamps collide.
	msg.CreatedAt = time.Now().Add(time.Duration(s.d.seq) * time.Microsecond)
	if msg.DeletedFor == nil {
		msg.DeletedFor = []string{}
	}
	s.d.messages = append(s.d.messages, *msg)
	return nil
}

func (s *Messages) FindByID(ctx context.Context, id string) (*models.Message, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	for _, msg := range s.d.messages {
		if msg.ID == id {
			m := msg
			return &m, nil
		}
	}
	return nil, nil
}

func (s *Messages) ListBetween(ctx context.Context, viewer, other string, limit, offset int) ([]models.Message, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var visible []models.Message
	for _, msg := range s.d.messages {
		if sameConversation(msg, viewer, other) && !deletedFor(msg, viewer) {
			visible = append(visible, msg)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	if offset >= len(visible) {
		return nil, nil
	}
	visible = visible[offset:]
	if limit > 0 && limit < len(visible) {
		visible = visible[:limit]
	}
	return visible, nil
}

func (s *Messages) MarkRead(ctx context.Context, senderID, receiverID string, at time.Time) (int64, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	var updated int64
	for i := range s.d.messages {
		m := &s.d.messages[i]
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.Read {
			m.Read = true
			readAt := at
			m.ReadAt = &readAt
			updated++
		}
	}
	return updated, nil
}

func (s *Messages) SoftDeleteMessage(ctx context.Context, viewer, messageID string) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	for i := range s.d.messages {
		m := &s.d.messages[i]
		if m.ID == messageID && !deletedFor(*m, viewer) {
			m.DeletedFor = append(m.DeletedFor, viewer)
		}
	}
	return nil
}

func (s *Messages) SoftDeleteConversation(ctx context.Context, viewer, other string) (int64, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	var updated int64
	for i := range s.d.messages {
		m := &s.d.messages[i]
		if sameConversation(*m, viewer, other) && !deletedFor(*m, viewer) {
			m.DeletedFor = append(m.DeletedFor, viewer)
			updated++
		}
	}
	return updated, nil
}

func (s *Messages) RestoreForViewer(ctx context.Context, viewer, other string) (int64, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	var updated int64
	for i := range s.d.messages {
		m := &s.d.messages[i]
		if !sameConversation(*m, viewer, other) || !deletedFor(*m, viewer) {
			continue
		}
		kept := make([]string, 0, len(m.DeletedFor))
		for _, id := range m.DeletedFor {
			if id != viewer {
				kept = append(kept, id)
			}
		}
		m.DeletedFor = kept
		updated++
	}
	return updated, nil
}

func (s *Messages) UnreadCount(ctx context.Context, viewer string) (int, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	count := 0
	for _, msg := range s.d.messages {
		if msg.ReceiverID == viewer && !msg.Read && !deletedFor(msg, viewer) {
			count++
		}
	}
	return count, nil
}

func (s *Messages) HasAny(ctx context.Context, userA, userB string) (bool, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	for _, msg := range s.d.messages {
		if sameConversation(msg, userA, userB) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Messages) Summaries(ctx context.Context, viewer string) ([]store.SummaryRow, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	byOther := make(map[string]*store.SummaryRow)
	for _, msg := range s.d.messages {
		if (msg.SenderID != viewer && msg.ReceiverID != viewer) || deletedFor(msg, viewer) {
			continue
		}
		other := msg.SenderID
		if other == viewer {
			other = msg.ReceiverID
		}
		row, ok := byOther[other]
		if !ok {
			row = &store.SummaryRow{OtherUserID: other, LastMessage: msg}
			byOther[other] = row
		} else if msg.CreatedAt.After(row.LastMessage.CreatedAt) {
			row.LastMessage = msg
		}
		if msg.ReceiverID == viewer && !msg.Read {
			row.UnreadCount++
		}
	}

	var summaries []store.SummaryRow
	for _, row := range byOther {
		summaries = append(summaries, *row)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.CreatedAt.After(summaries[j].LastMessage.CreatedAt)
	})
	return summaries, nil
}

// Reports implements store.ReportStore.
type Reports struct{ d *data }

var _ store.ReportStore = (*Reports)(nil)

func (s *Reports) Create(ctx context.Context, report *models.Report) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	report.ID = uuid.NewString()
	report.CreatedAt = time.Now()
	if report.Status == "" {
		report.Status = "pending"
	}
	s.d.reports = append(s.d.reports, *report)
	return nil
}

func (s *Reports) HasRecent(ctx context.Context, reporterID, reportedUserID, reason string, since time.Time) (bool, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	for _, r := range s.d.reports {
		if r.ReporterID == reporterID && r.ReportedUserID == reportedUserID &&
			r.Reason == reason && !r.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Reports) ListByReporter(ctx context.Context, reporterID string) ([]models.Report, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var reports []models.Report
	for _, r := range s.d.reports {
		if r.ReporterID == reporterID {
			reports = append(reports, r)
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}
