package models

import "time"

// Category groups posts. PostCount is maintained incrementally on post
// create/delete/move rather than recomputed; drift is accepted and can be
// audited because every adjustment goes through the same follow-up write.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;not null;index" json:"name"`
	IsDefault bool      `gorm:"default:false" json:"is_default"`
	IsPinned  bool      `gorm:"default:false" json:"is_pinned"`
	PostCount int64     `gorm:"not null;default:0" json:"post_count"`
	Order     int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
