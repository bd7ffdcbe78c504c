package models

import "time"

// ReportStatus tracks moderation progress on a report.
type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "pending"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusResolved   ReportStatus = "resolved"
	ReportStatusDismissed  ReportStatus = "dismissed"
)

// ValidReportStatus reports whether s is one of the known statuses.
func ValidReportStatus(s ReportStatus) bool {
	switch s {
	case ReportStatusPending, ReportStatusProcessing, ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}

// Report is a user complaint about a post. One report per (post, reporter)
// is enforced by a pre-check query before the insert.
type Report struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	PostID           uint         `gorm:"not null;index" json:"post_id"`
	PostTitle        string       `gorm:"size:255" json:"post_title"`
	ReporterID       uint         `gorm:"not null;index" json:"reporter_id"`
	ReporterNickname string       `gorm:"size:64" json:"reporter_nickname"`
	Reason           string       `gorm:"size:200;not null" json:"reason"`
	EtcContent       string       `gorm:"size:500" json:"etc_content,omitempty"`
	Status           ReportStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}
