// Package service implements the connection-state and messaging rules
// shared by the REST handlers and the realtime gateway. Both surfaces go
// through these methods so they enforce identical invariants.
package service

import (
	"context"

	"devlink/server/internal/apperr"
	"devlink/server/internal/models"
	"devlink/server/internal/store"
)

// ConnectionService owns the connection-request ledger: swipes, reviews,
// block/unblock, removal, and the "may these two message each other"
// predicate.
type ConnectionService struct {
	connections store.ConnectionStore
	messages    store.MessageStore
	users       store.UserStore
}

// NewConnectionService creates a ConnectionService.
func NewConnectionService(connections store.ConnectionStore, messages store.MessageStore, users store.UserStore) *ConnectionService {
	return &ConnectionService{connections: connections, messages: messages, users: users}
}

// CanExchangeMessages reports whether userA and userB may message each
// other right now. A blocked relationship blocks both directions no matter
// who initiated it; otherwise only an accepted relationship qualifies.
// The result is symmetric in its arguments and is never cached: block and
// unblock mutate it, so every send, read and relay re-evaluates it.
func (s *ConnectionService) CanExchangeMessages(ctx context.Context, userA, userB string) (bool, error) {
	rec, err := s.connections.FindBetween(ctx, userA, userB)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	if rec.Status == models.StatusBlocked {
		return false, nil
	}
	return rec.Status == models.StatusAccepted, nil
}

// SendRequest handles a swipe from fromUserID towards toUserID. On mutual
// interest the existing record is promoted to accepted in place and
// matched is true.
func (s *ConnectionService) SendRequest(ctx context.Context, fromUserID, toUserID string, status models.ConnectionStatus) (*models.ConnectionRequest, bool, error) {
	if !models.ValidSwipeStatus(status) {
		return nil, false, apperr.New(apperr.KindValidation, "Invalid status")
	}
	if fromUserID == toUserID {
		return nil, false, apperr.New(apperr.KindValidation, "You cannot send a request to yourself")
	}

	toUser, err := s.users.FindByID(ctx, toUserID)
	if err != nil {
		return nil, false, err
	}
	if toUser == nil {
		return nil, false, apperr.New(apperr.KindNotFound, "The user you are trying to connect with does not exist")
	}

	existing, err := s.connections.FindBetween(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		req := &models.ConnectionRequest{
			FromUserID: fromUserID,
			ToUserID:   toUserID,
			Status:     status,
		}
		if err := s.connections.Create(ctx, req); err != nil {
			return nil, false, err
		}
		return req, false, nil
	}

	switch existing.Status {
	case models.StatusInterested:
		// Mutual interest promotes the existing record, it never creates
		// a second one.
		if status == models.StatusInterested && existing.FromUserID == toUserID {
			existing.Status = models.StatusAccepted
			if err := s.connections.Update(ctx, existing); err != nil {
				return nil, false, err
			}
			return existing, true, nil
		}
		return nil, false, apperr.New(apperr.KindConflict, "You have already shown interest in this user")
	case models.StatusRejected, models.StatusIgnore:
		// A pass is re-proposable; the new swipe takes over the record,
		// direction included.
		existing.FromUserID = fromUserID
		existing.ToUserID = toUserID
		existing.Status = status
		if err := s.connections.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case models.StatusAccepted:
		return nil, false, apperr.New(apperr.KindConflict, "You are already connected with this user")
	case models.StatusBlocked:
		return nil, false, apperr.New(apperr.KindConflict, "This user is blocked")
	}
	return nil, false, apperr.Newf(apperr.KindInternal, "unexpected connection status %q", existing.Status)
}

// Review accepts or rejects a pending request. Only the addressee of an
// interested record may review it; anything else reads as not found.
func (s *ConnectionService) Review(ctx context.Context, reviewerID, requestID string, status models.ConnectionStatus) (*models.ConnectionRequest, error) {
	if !models.ValidReviewStatus(status) {
		return nil, apperr.New(apperr.KindValidation, "Status not allowed")
	}

	req, err := s.connections.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.ToUserID != reviewerID || req.Status != models.StatusInterested {
		return nil, apperr.New(apperr.KindNotFound, "Connection request not found")
	}

	req.Status = status
	if err := s.connections.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Remove unfriends an accepted connection: the record is hard-deleted and
// the conversation is hidden from both parties.
func (s *ConnectionService) Remove(ctx context.Context, userID, otherUserID string) error {
	rec, err := s.connections.FindBetween(ctx, userID, otherUserID)
	if err != nil {
		return err
	}
	if rec == nil || rec.Status != models.StatusAccepted {
		return apperr.New(apperr.KindNotFound, "Connection not found")
	}

	if err := s.connections.Delete(ctx, rec.ID); err != nil {
		return err
	}
	if _, err := s.messages.SoftDeleteConversation(ctx, userID, otherUserID); err != nil {
		return err
	}
	_, err = s.messages.SoftDeleteConversation(ctx, otherUserID, userID)
	return err
}

// Block marks the relationship blocked regardless of its prior state and
// hides the conversation from the blocker only.
func (s *ConnectionService) Block(ctx context.Context, userID, otherUserID string) (*models.ConnectionRequest, error) {
	if userID == otherUserID {
		return nil, apperr.New(apperr.KindValidation, "You cannot block yourself")
	}

	otherUser, err := s.users.FindByID(ctx, otherUserID)
	if err != nil {
		return nil, err
	}
	if otherUser == nil {
		return nil, apperr.New(apperr.KindNotFound, "User not found")
	}

	rec, err := s.connections.FindBetween(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		rec.Status = models.StatusBlocked
		rec.BlockedBy = &userID
		if err := s.connections.Update(ctx, rec); err != nil {
			return nil, err
		}
	} else {
		rec = &models.ConnectionRequest{
			FromUserID: userID,
			ToUserID:   otherUserID,
			Status:     models.StatusBlocked,
			BlockedBy:  &userID,
		}
		if err := s.connections.Create(ctx, rec); err != nil {
			return nil, err
		}
	}

	if _, err := s.messages.SoftDeleteConversation(ctx, userID, otherUserID); err != nil {
		return nil, err
	}
	return rec, nil
}

// Unblock reverses a block. Only the blocker may unblock. A pair with any
// message history (soft-deleted included) is restored to accepted and the
// blocker's hidden messages come back; a pair with no history never had a
// real connection, so the record is deleted instead.
func (s *ConnectionService) Unblock(ctx context.Context, userID, otherUserID string) (bool, error) {
	rec, err := s.connections.FindBetween(ctx, userID, otherUserID)
	if err != nil {
		return false, err
	}
	if rec == nil || rec.Status != models.StatusBlocked {
		return false, apperr.New(apperr.KindNotFound, "Blocked connection not found")
	}
	if rec.BlockedBy == nil || *rec.BlockedBy != userID {
		return false, apperr.New(apperr.KindPermission, "Only the user who blocked can unblock")
	}

	hasHistory, err := s.messages.HasAny(ctx, userID, otherUserID)
	if err != nil {
		return false, err
	}

	if !hasHistory {
		return false, s.connections.Delete(ctx, rec.ID)
	}

	rec.Status = models.StatusAccepted
	rec.BlockedBy = nil
	if err := s.connections.Update(ctx, rec); err != nil {
		return false, err
	}
	if _, err := s.messages.RestoreForViewer(ctx, userID, otherUserID); err != nil {
		return false, err
	}
	return true, nil
}

// RequestsReceived lists pending interested requests addressed to userID.
func (s *ConnectionService) RequestsReceived(ctx context.Context, userID string) ([]models.ConnectionRequestWithUser, error) {
	requests, err := s.connections.ListInterestedTo(ctx, userID)
	if err != nil {
		return nil, err
	}

	fromIDs := make([]string, 0, len(requests))
	for _, req := range requests {
		fromIDs = append(fromIDs, req.FromUserID)
	}
	users, err := s.users.FindByIDs(ctx, fromIDs)
	if err != nil {
		return nil, err
	}

	result := make([]models.ConnectionRequestWithUser, 0, len(requests))
	for _, req := range requests {
		user, ok := users[req.FromUserID]
		if !ok {
			continue
		}
		result = append(result, models.ConnectionRequestWithUser{
			ID:        req.ID,
			FromUser:  user.ToCard(),
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
		})
	}
	return result, nil
}

// Connections lists accepted connections plus users blocked by the caller,
// each tagged with the relationship status from the caller's side.
func (s *ConnectionService) Connections(ctx context.Context, userID string) ([]models.ConnectionUser, error) {
	accepted, err := s.connections.ListByStatusFor(ctx, userID, models.StatusAccepted)
	if err != nil {
		return nil, err
	}
	blocked, err := s.connections.ListBlockedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	records := append(accepted, blocked...)
	otherIDs := make([]string, 0, len(records))
	for _, rec := range records {
		otherIDs = append(otherIDs, rec.OtherUser(userID))
	}
	users, err := s.users.FindByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	result := make([]models.ConnectionUser, 0, len(records))
	for _, rec := range records {
		user, ok := users[rec.OtherUser(userID)]
		if !ok {
			continue
		}
		result = append(result, models.ConnectionUser{
			User:             user.ToCard(),
			ConnectionStatus: rec.Status,
		})
	}
	return result, nil
}

// BlockedUsers lists the users blocked by userID.
func (s *ConnectionService) BlockedUsers(ctx context.Context, userID string) ([]models.UserCard, error) {
	blocked, err := s.connections.ListBlockedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]string, 0, len(blocked))
	for _, rec := range blocked {
		otherIDs = append(otherIDs, rec.OtherUser(userID))
	}
	users, err := s.users.FindByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	cards := make([]models.UserCard, 0, len(blocked))
	for _, rec := range blocked {
		if user, ok := users[rec.OtherUser(userID)]; ok {
			cards = append(cards, user.ToCard())
		}
	}
	return cards, nil
}
