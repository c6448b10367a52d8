package models

import "time"

// ReportReasons are the accepted reasons for reporting a user
var ReportReasons = []string{
	"spam",
	"harassment",
	"inappropriate_content",
	"fake_profile",
	"scam",
	"other",
}

// ValidReportReason reports whether reason is in the accepted set.
func ValidReportReason(reason string) bool {
	for _, r := range ReportReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// Report is a user report filed against another user
type Report struct {
	ID             string    `json:"id" db:"id"`
	ReporterID     string    `json:"reporterId" db:"reporter_id"`
	ReportedUserID string    `json:"reportedUserId" db:"reported_user_id"`
	Reason         string    `json:"reason" db:"reason"`
	Description    string    `json:"description" db:"description"`
	Status         string    `json:"status" db:"status"` // 'pending', 'reviewed', 'resolved', 'dismissed'
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
