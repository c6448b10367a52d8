package store

import (
	"context"
	"errors"
	"time"

	"devlink/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const connectionColumns = `id, from_user_id, to_user_id, status, blocked_by, created_at, updated_at`

type pgConnectionStore struct {
	pool *pgxpool.Pool
}

func scanConnection(row pgx.Row) (*models.ConnectionRequest, error) {
	var req models.ConnectionRequest
	err := row.Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Status,
		&req.BlockedBy, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *pgConnectionStore) Create(ctx context.Context, req *models.ConnectionRequest) error {
	req.ID = uuid.NewString()
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO connection_requests (id, from_user_id, to_user_id, status, blocked_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, req.ID, req.FromUserID, req.ToUserID, req.Status, req.BlockedBy, req.CreatedAt, req.UpdatedAt)
	return err
}

func (s *pgConnectionStore) Update(ctx context.Context, req *models.ConnectionRequest) error {
	req.UpdatedAt = time.Now()
	_, err := s.pool.Exec(ctx, `
		UPDATE connection_requests
		SET from_user_id = $2, to_user_id = $3, status = $4, blocked_by = $5, updated_at = $6
		WHERE id = $1
	`, req.ID, req.FromUserID, req.ToUserID, req.Status, req.BlockedBy, req.UpdatedAt)
	return err
}

func (s *pgConnectionStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM connection_requests WHERE id = $1`, id)
	return err
}

func (s *pgConnectionStore) FindByID(ctx context.Context, id string) (*models.ConnectionRequest, error) {
	req, err := scanConnection(s.pool.QueryRow(ctx, `
		SELECT `+connectionColumns+` FROM connection_requests WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return req, err
}

// FindBetween looks up the relationship of the unordered pair. The pair is
// normalized with LEAST/GREATEST so one query shape covers both directions.
func (s *pgConnectionStore) FindBetween(ctx context.Context, userA, userB string) (*models.ConnectionRequest, error) {
	req, err := scanConnection(s.pool.QueryRow(ctx, `
		SELECT `+connectionColumns+`
		FROM connection_requests
		WHERE LEAST(from_user_id, to_user_id) = LEAST($1::text, $2::text)
		  AND GREATEST(from_user_id, to_user_id) = GREATEST($1::text, $2::text)
		ORDER BY updated_at DESC
		LIMIT 1
	`, userA, userB))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return req, err
}

func (s *pgConnectionStore) queryConnections(ctx context.Context, query string, args ...interface{}) ([]models.ConnectionRequest, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.ConnectionRequest
	for rows.Next() {
		req, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

func (s *pgConnectionStore) ListForUser(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	return s.queryConnections(ctx, `
		SELECT `+connectionColumns+`
		FROM connection_requests
		WHERE from_user_id = $1 OR to_user_id = $1
	`, userID)
}

func (s *pgConnectionStore) ListByStatusFor(ctx context.Context, userID string, status models.ConnectionStatus) ([]models.ConnectionRequest, error) {
	return s.queryConnections(ctx, `
		SELECT `+connectionColumns+`
		FROM connection_requests
		WHERE (from_user_id = $1 OR to_user_id = $1) AND status = $2
	`, userID, status)
}

func (s *pgConnectionStore) ListBlockedBy(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	return s.queryConnections(ctx, `
		SELECT `+connectionColumns+`
		FROM connection_requests
		WHERE (from_user_id = $1 OR to_user_id = $1) AND status = 'blocked' AND blocked_by = $1
	`, userID)
}

func (s *pgConnectionStore) ListInterestedTo(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	return s.queryConnections(ctx, `
		SELECT `+connectionColumns+`
		FROM connection_requests
		WHERE to_user_id = $1 AND status = 'interested'
		ORDER BY created_at DESC
	`, userID)
}
