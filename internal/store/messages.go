package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"devlink/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const messageColumns = `id, sender_id, receiver_id, content, read, read_at, deleted_for, created_at`

type pgMessageStore struct {
	pool *pgxpool.Pool
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var msg models.Message
	err := row.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content,
		&msg.Read, &msg.ReadAt, &msg.DeletedFor, &msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *pgMessageStore) Insert(ctx context.Context, msg *models.Message) error {
	msg.ID = uuid.NewString()
	// Persistence time is the sole ordering key for a conversation.
	msg.CreatedAt = time.Now()
	if msg.DeletedFor == nil {
		msg.DeletedFor = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, content, read, read_at, deleted_for, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, msg.ID, msg.SenderID, msg.ReceiverID, msg.Content, msg.Read, msg.ReadAt, msg.DeletedFor, msg.CreatedAt)
	return err
}

func (s *pgMessageStore) FindByID(ctx context.Context, id string) (*models.Message, error) {
	msg, err := scanMessage(s.pool.QueryRow(ctx, `
		SELECT `+messageColumns+` FROM messages WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return msg, err
}

func (s *pgMessageStore) ListBetween(ctx context.Context, viewer, other string, limit, offset int) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND NOT ($1 = ANY(deleted_for))
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, viewer, other, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

func (s *pgMessageStore) MarkRead(ctx context.Context, senderID, receiverID string, at time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE messages
		SET read = true, read_at = $3
		WHERE sender_id = $1 AND receiver_id = $2 AND read = false
	`, senderID, receiverID, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *pgMessageStore) SoftDeleteMessage(ctx context.Context, viewer, messageID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE messages
		SET deleted_for = array_append(deleted_for, $1)
		WHERE id = $2 AND NOT ($1 = ANY(deleted_for))
	`, viewer, messageID)
	return err
}

func (s *pgMessageStore) SoftDeleteConversation(ctx context.Context, viewer, other string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE messages
		SET deleted_for = array_append(deleted_for, $1)
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND NOT ($1 = ANY(deleted_for))
	`, viewer, other)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *pgMessageStore) RestoreForViewer(ctx context.Context, viewer, other string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE messages
		SET deleted_for = array_remove(deleted_for, $1)
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND $1 = ANY(deleted_for)
	`, viewer, other)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *pgMessageStore) UnreadCount(ctx context.Context, viewer string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE receiver_id = $1 AND read = false AND NOT ($1 = ANY(deleted_for))
	`, viewer).Scan(&count)
	return count, err
}

// HasAny reports whether the pair ever exchanged a message. Soft-deleted
// messages count as history.
func (s *pgMessageStore) HasAny(ctx context.Context, userA, userB string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM messages
			WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		)
	`, userA, userB).Scan(&exists)
	return exists, err
}

func (s *pgMessageStore) Summaries(ctx context.Context, viewer string) ([]SummaryRow, error) {
	rows, err := s.pool.Query(ctx, `
		WITH visible AS (
			SELECT m.*, CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS other_id
			FROM messages m
			WHERE (m.sender_id = $1 OR m.receiver_id = $1)
			  AND NOT ($1 = ANY(m.deleted_for))
		)
		SELECT DISTINCT ON (v.other_id)
			v.other_id, v.id, v.sender_id, v.receiver_id, v.content, v.read, v.read_at, v.deleted_for, v.created_at,
			(SELECT COUNT(*) FROM visible u
			 WHERE u.other_id = v.other_id AND u.receiver_id = $1 AND u.read = false) AS unread_count
		FROM visible v
		ORDER BY v.other_id, v.created_at DESC
	`, viewer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []SummaryRow
	for rows.Next() {
		var row SummaryRow
		var msg models.Message
		err := rows.Scan(&row.OtherUserID, &msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content,
			&msg.Read, &msg.ReadAt, &msg.DeletedFor, &msg.CreatedAt, &row.UnreadCount)
		if err != nil {
			return nil, err
		}
		row.LastMessage = msg
		summaries = append(summaries, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// DISTINCT ON forces other_id ordering; conversations are presented
	// most recent first.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.CreatedAt.After(summaries[j].LastMessage.CreatedAt)
	})
	return summaries, nil
}
