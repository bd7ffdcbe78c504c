package models

import "time"

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeReply   NotificationType = "reply"
)

// NotificationPreviewLength bounds the comment excerpt stored on a
// notification.
const NotificationPreviewLength = 50

// Notification is created as a side effect of like and comment actions and
// addressed to the affected author. Self-actions never create one.
type Notification struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	UserID         uint             `gorm:"not null;index" json:"user_id"` // recipient
	FromUserID     uint             `gorm:"index" json:"from_user_id"`
	FromNickname   string           `gorm:"size:64" json:"from_nickname"`
	Type           NotificationType `gorm:"size:16;not null" json:"type"`
	PostID         uint             `gorm:"index" json:"post_id"`
	PostTitle      string           `gorm:"size:255" json:"post_title"`
	CommentContent string           `gorm:"size:64" json:"comment_content,omitempty"`
	IsRead         bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt      time.Time        `json:"created_at"`
}

// TruncatePreview shortens comment content for notification display. Counted
// in runes so multi-byte text is not cut mid-character.
func TruncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= NotificationPreviewLength {
		return content
	}
	return string(runes[:NotificationPreviewLength])
}
