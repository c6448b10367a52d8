package store

import (
	"context"
	"time"

	"devlink/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgReportStore struct {
	pool *pgxpool.Pool
}

func (s *pgReportStore) Create(ctx context.Context, report *models.Report) error {
	report.ID = uuid.NewString()
	report.CreatedAt = time.Now()
	if report.Status == "" {
		report.Status = "pending"
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO reports (id, reporter_id, reported_user_id, reason, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, report.ID, report.ReporterID, report.ReportedUserID, report.Reason,
		report.Description, report.Status, report.CreatedAt)
	return err
}

func (s *pgReportStore) HasRecent(ctx context.Context, reporterID, reportedUserID, reason string, since time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM reports
			WHERE reporter_id = $1 AND reported_user_id = $2 AND reason = $3 AND created_at >= $4
		)
	`, reporterID, reportedUserID, reason, since).Scan(&exists)
	return exists, err
}

func (s *pgReportStore) ListByReporter(ctx context.Context, reporterID string) ([]models.Report, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, reporter_id, reported_user_id, reason, description, status, created_at
		FROM reports
		WHERE reporter_id = $1
		ORDER BY created_at DESC
	`, reporterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var r models.Report
		err := rows.Scan(&r.ID, &r.ReporterID, &r.ReportedUserID, &r.Reason,
			&r.Description, &r.Status, &r.CreatedAt)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
