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

const userColumns = `id, first_name, last_name, email_id, password_hash, photo_url, about, skills,
	gender, college, course, branch, interested_to_connect_with, created_at, updated_at`

type pgUserStore struct {
	pool *pgxpool.Pool
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.EmailID, &user.Password,
		&user.PhotoURL, &user.About, &user.Skills, &user.Gender, &user.College,
		&user.Course, &user.Branch, &user.InterestedToConnectWith, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *pgUserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.NewString()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Skills == nil {
		user.Skills = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, first_name, last_name, email_id, password_hash, photo_url, about, skills,
			gender, college, course, branch, interested_to_connect_with, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, user.ID, user.FirstName, user.LastName, user.EmailID, user.Password, user.PhotoURL,
		user.About, user.Skills, user.Gender, user.College, user.Course, user.Branch,
		user.InterestedToConnectWith, user.CreatedAt, user.UpdatedAt)
	return err
}

func (s *pgUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (s *pgUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email_id = $1
	`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (s *pgUserStore) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	users := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[user.ID] = *user
	}
	return users, rows.Err()
}

func (s *pgUserStore) ListCandidates(ctx context.Context, excludeIDs []string, gender string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE NOT (id = ANY($1))`
	args := []interface{}{excludeIDs}
	if gender != "" {
		query += ` AND gender = $2`
		args = append(args, gender)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}
