// Package store is the persistence boundary. Interfaces are defined here
// and implemented against Postgres via pgx; lookups that can legitimately
// miss return (nil, nil) and leave the not-found decision to the caller.
package store

import (
	"context"
	"time"

	"devlink/server/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserStore provides read access to account records. Accounts are owned
// by the auth subsystem; the core only references them.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	ListCandidates(ctx context.Context, excludeIDs []string, gender string) ([]models.User, error)
}

// ConnectionStore persists the connection-request ledger. Pair lookups are
// direction-agnostic: the pair is normalized before querying.
type ConnectionStore interface {
	Create(ctx context.Context, req *models.ConnectionRequest) error
	Update(ctx context.Context, req *models.ConnectionRequest) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.ConnectionRequest, error)
	FindBetween(ctx context.Context, userA, userB string) (*models.ConnectionRequest, error)
	ListForUser(ctx context.Context, userID string) ([]models.ConnectionRequest, error)
	ListByStatusFor(ctx context.Context, userID string, status models.ConnectionStatus) ([]models.ConnectionRequest, error)
	ListBlockedBy(ctx context.Context, userID string) ([]models.ConnectionRequest, error)
	ListInterestedTo(ctx context.Context, userID string) ([]models.ConnectionRequest, error)
}

// SummaryRow is one conversation aggregate before profile enrichment.
type SummaryRow struct {
	OtherUserID string
	LastMessage models.Message
	UnreadCount int
}

// MessageStore is the append-only message log with per-viewer soft delete.
type MessageStore interface {
	Insert(ctx context.Context, msg *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	// ListBetween returns messages of the pair visible to viewer,
	// newest first.
	ListBetween(ctx context.Context, viewer, other string, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, senderID, receiverID string, at time.Time) (int64, error)
	SoftDeleteMessage(ctx context.Context, viewer, messageID string) error
	SoftDeleteConversation(ctx context.Context, viewer, other string) (int64, error)
	RestoreForViewer(ctx context.Context, viewer, other string) (int64, error)
	UnreadCount(ctx context.Context, viewer string) (int, error)
	HasAny(ctx context.Context, userA, userB string) (bool, error)
	Summaries(ctx context.Context, viewer string) ([]SummaryRow, error)
}

// ReportStore persists user reports.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	HasRecent(ctx context.Context, reporterID, reportedUserID, reason string, since time.Time) (bool, error)
	ListByReporter(ctx context.Context, reporterID string) ([]models.Report, error)
}

// Store bundles the Postgres-backed implementations.
type Store struct {
	Users       UserStore
	Connections ConnectionStore
	Messages    MessageStore
	Reports     ReportStore
}

// New creates a Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		Users:       &pgUserStore{pool: pool},
		Connections: &pgConnectionStore{pool: pool},
		Messages:    &pgMessageStore{pool: pool},
		Reports:     &pgReportStore{pool: pool},
	}
}
